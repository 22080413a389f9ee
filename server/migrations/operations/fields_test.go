package operations_test

import (
	"modelmove/server/errors"
	"modelmove/server/migrations"
	"modelmove/server/migrations/editortest"
	. "modelmove/server/migrations/operations"
	"modelmove/server/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Field operations", func() {
	var recorder *editortest.Recorder

	BeforeEach(func() {
		recorder = editortest.NewRecorder()
	})

	Describe("AddField", func() {
		It("adds the field to the model and the column to the table", func() {
			operation, err := NewAddField("Foo", "body", state.Field{Type: "text", Null: true}, true)
			Expect(err).To(BeNil())

			after := forwards(operation, fooState(), recorder)
			Expect(model(after, "Foo").FindField("body")).NotTo(BeNil())
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodAddField, Table: "oldapp_foo", Args: []interface{}{"body"}},
			}))
		})

		It("drops a default which is not preserved once the column is populated", func() {
			operation, err := NewAddField("Foo", "rank", state.Field{Type: "integer", Default: "0"}, false)
			Expect(err).To(BeNil())

			after := forwards(operation, fooState(), recorder)
			Expect(model(after, "Foo").FindField("rank").Default).To(BeEmpty())
			Expect(recorder.Methods()).To(Equal([]string{editortest.MethodAddField, editortest.MethodAlterField}))
		})

		It("removes the column backwards", func() {
			operation, _ := NewAddField("Foo", "body", state.Field{Type: "text"}, true)
			backwards(operation, fooState(), recorder)
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodRemoveField, Table: "oldapp_foo", Args: []interface{}{"body"}},
			}))
		})

		It("refuses a field that already exists", func() {
			operation, _ := NewAddField("Foo", "title", state.Field{Type: "text"}, true)
			err := operation.StateForwards(appLabel, fooState())
			Expect(errors.CodeOf(err)).To(Equal(state.ErrFieldExists))
		})

		It("validates its arguments", func() {
			_, err := NewAddField("", "body", state.Field{Type: "text"}, true)
			Expect(errors.CodeOf(err)).To(Equal(migrations.MigrationErrorInvalidArgument))

			_, err = NewAddField("Foo", "body", state.Field{}, true)
			Expect(errors.CodeOf(err)).To(Equal(migrations.MigrationErrorInvalidArgument))

			_, err = NewAddField("Foo", "body", state.Field{Name: "other", Type: "text"}, true)
			Expect(errors.CodeOf(err)).To(Equal(migrations.MigrationErrorInvalidArgument))
		})
	})

	Describe("RemoveField", func() {
		It("removes the field and drops the column", func() {
			operation, err := NewRemoveField("Foo", "title")
			Expect(err).To(BeNil())

			after := forwards(operation, fooState(), recorder)
			Expect(model(after, "Foo").FindField("title")).To(BeNil())
			Expect(model(after, "Foo").Fields).To(HaveLen(2))
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodRemoveField, Table: "oldapp_foo", Args: []interface{}{"title"}},
			}))
		})

		It("adds the column back backwards", func() {
			operation, _ := NewRemoveField("Foo", "title")
			backwards(operation, fooState(), recorder)
			Expect(recorder.Methods()).To(Equal([]string{editortest.MethodAddField}))
		})

		It("fails for an unknown field", func() {
			operation, _ := NewRemoveField("Foo", "missing")
			err := operation.StateForwards(appLabel, fooState())
			Expect(errors.CodeOf(err)).To(Equal(state.ErrFieldNotFound))
		})

		It("fails for an unknown model", func() {
			operation, _ := NewRemoveField("Bar", "title")
			err := operation.StateForwards(appLabel, fooState())
			Expect(errors.CodeOf(err)).To(Equal(state.ErrModelNotFound))
		})
	})

	Describe("AlterField", func() {
		It("replaces the field definition", func() {
			operation, err := NewAlterField("Foo", "title", state.Field{Type: "text", Null: true}, true)
			Expect(err).To(BeNil())

			after := forwards(operation, fooState(), recorder)
			Expect(*model(after, "Foo").FindField("title")).To(Equal(state.Field{Name: "title", Type: "text", Null: true}))
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodAlterField, Table: "oldapp_foo", Args: []interface{}{"title", "title"}},
			}))
		})
	})

	Describe("RenameField", func() {
		It("renames the field everywhere it is referenced", func() {
			before := fooState()
			foo := model(before, "Foo")
			foo.UniqueTogether = [][]string{{"title", "position"}}
			foo.Indexes = []state.Index{{Name: "foo_title_idx", Fields: []string{"title"}}}
			foo.OrderWithRespectTo = "title"

			operation, err := NewRenameField("Foo", "title", "headline")
			Expect(err).To(BeNil())
			after := forwards(operation, before, recorder)

			renamed := model(after, "Foo")
			Expect(renamed.FindField("headline")).NotTo(BeNil())
			Expect(renamed.FindField("title")).To(BeNil())
			Expect(renamed.UniqueTogether).To(Equal([][]string{{"headline", "position"}}))
			Expect(renamed.Indexes[0].Fields).To(Equal([]string{"headline"}))
			Expect(renamed.OrderWithRespectTo).To(Equal("headline"))
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodAlterField, Table: "oldapp_foo", Args: []interface{}{"title", "headline"}},
			}))

			//the original state is untouched
			Expect(foo.UniqueTogether).To(Equal([][]string{{"title", "position"}}))
		})

		It("renames back backwards", func() {
			operation, _ := NewRenameField("Foo", "title", "headline")
			backwards(operation, fooState(), recorder)
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodAlterField, Table: "oldapp_foo", Args: []interface{}{"headline", "title"}},
			}))
		})

		It("requires the new name", func() {
			_, err := NewRenameField("Foo", "title", "")
			Expect(errors.CodeOf(err)).To(Equal(migrations.MigrationErrorInvalidArgument))
		})
	})
})
