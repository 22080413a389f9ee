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

var _ = Describe("Model operations", func() {
	var recorder *editortest.Recorder

	BeforeEach(func() {
		recorder = editortest.NewRecorder()
	})

	Describe("CreateModel", func() {
		fields := []state.Field{
			{Name: "id", Type: "serial", PrimaryKey: true},
			{Name: "name", Type: "varchar(64)"},
		}

		It("rejects options that can not be stored", func() {
			_, err := NewCreateModel("Bar", fields, map[string]interface{}{
				"permissions": map[interface{}]interface{}{1: "can_view"},
			}, nil, nil)
			Expect(errors.CodeOf(err)).To(Equal(migrations.MigrationErrorInvalidArgument))

			_, err = resolve(Spec{Type: "CreateModel", Args: Args{
				"name":    "Bar",
				"fields":  []interface{}{map[string]interface{}{"name": "id", "type": "serial", "primary_key": true}},
				"options": map[string]interface{}{"permissions": map[interface{}]interface{}{1: "can_view"}},
			}})
			Expect(errors.CodeOf(err)).To(Equal(migrations.MigrationErrorInvalidArgument))
		})

		It("adds the model and creates its table", func() {
			operation, err := NewCreateModel("Bar", fields, map[string]interface{}{
				"unique_together": [][]string{{"name"}},
				"verbose_name":    "bar",
			}, nil, nil)
			Expect(err).To(BeNil())

			after := forwards(operation, fooState(), recorder)
			bar := model(after, "Bar")
			Expect(bar.Fields).To(Equal(fields))
			Expect(bar.UniqueTogether).To(Equal([][]string{{"name"}}))
			Expect(bar.Options).To(HaveKeyWithValue("verbose_name", "bar"))
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodCreateModel, Table: "oldapp_bar", Args: nil},
			}))
		})

		It("honours db_table", func() {
			operation, _ := NewCreateModel("Bar", fields, map[string]interface{}{"db_table": "legacy_bar"}, nil, nil)
			after := forwards(operation, fooState(), recorder)
			Expect(model(after, "Bar").DbTable()).To(Equal("legacy_bar"))
			Expect(recorder.Calls()[0].Table).To(Equal("legacy_bar"))
		})

		It("drops the table backwards", func() {
			operation, _ := NewCreateModel("Bar", fields, nil, nil, nil)
			backwards(operation, fooState(), recorder)
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodDeleteModel, Table: "oldapp_bar", Args: nil},
			}))
		})

		It("rejects duplicated fields, bases and managers", func() {
			_, err := NewCreateModel("Bar", append(fields, state.Field{Name: "name", Type: "text"}), nil, nil, nil)
			Expect(errors.CodeOf(err)).To(Equal(migrations.MigrationErrorInvalidArgument))

			_, err = NewCreateModel("Bar", fields, nil, []string{"base.Model", "base.model"}, nil)
			Expect(errors.CodeOf(err)).To(Equal(migrations.MigrationErrorInvalidArgument))

			_, err = NewCreateModel("Bar", fields, nil, nil, []state.Manager{{Name: "objects"}, {Name: "objects"}})
			Expect(errors.CodeOf(err)).To(Equal(migrations.MigrationErrorInvalidArgument))
		})

		It("refuses to create an existing model", func() {
			operation, _ := NewCreateModel("Foo", fields, nil, nil, nil)
			err := operation.StateForwards(appLabel, fooState())
			Expect(errors.CodeOf(err)).To(Equal(state.ErrModelExists))
		})
	})

	Describe("DeleteModel", func() {
		It("removes the model and drops its table", func() {
			operation, err := NewDeleteModel("Foo")
			Expect(err).To(BeNil())

			after := forwards(operation, fooState(), recorder)
			Expect(after.HasModel(appLabel, "Foo")).To(BeFalse())
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodDeleteModel, Table: "oldapp_foo", Args: nil},
			}))
		})

		It("recreates the table backwards", func() {
			operation, _ := NewDeleteModel("Foo")
			backwards(operation, fooState(), recorder)
			Expect(recorder.Methods()).To(Equal([]string{editortest.MethodCreateModel}))
		})
	})

	Describe("RenameModel", func() {
		It("renames the model and its default table", func() {
			operation, err := NewRenameModel("Foo", "Baz")
			Expect(err).To(BeNil())

			after := forwards(operation, fooState(), recorder)
			Expect(after.HasModel(appLabel, "Foo")).To(BeFalse())
			Expect(model(after, "Baz").Fields).To(HaveLen(3))
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodAlterDbTable, Table: "oldapp_baz", Args: []interface{}{"oldapp_foo", "oldapp_baz"}},
			}))
		})

		It("rejects renaming to the same name", func() {
			_, err := NewRenameModel("Foo", "Foo")
			Expect(errors.CodeOf(err)).To(Equal(migrations.MigrationErrorInvalidArgument))
		})
	})

	Describe("AlterModelTable", func() {
		It("points the model at another table", func() {
			operation, err := NewAlterModelTable("Foo", "newapp_foo")
			Expect(err).To(BeNil())

			after := forwards(operation, fooState(), recorder)
			Expect(model(after, "Foo").DbTable()).To(Equal("newapp_foo"))
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodAlterDbTable, Table: "newapp_foo", Args: []interface{}{"oldapp_foo", "newapp_foo"}},
			}))
		})

		It("renames the table back backwards", func() {
			operation, _ := NewAlterModelTable("Foo", "newapp_foo")
			backwards(operation, fooState(), recorder)
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodAlterDbTable, Table: "oldapp_foo", Args: []interface{}{"newapp_foo", "oldapp_foo"}},
			}))
		})

		It("resets to the default table when the table is empty", func() {
			before := fooState()
			model(before, "Foo").Table = "legacy_foo"
			operation, _ := NewAlterModelTable("Foo", "")

			after := forwards(operation, before, recorder)
			Expect(model(after, "Foo").DbTable()).To(Equal("oldapp_foo"))
		})
	})

	Describe("AlterModelOptions", func() {
		It("rejects options that can not be stored", func() {
			_, err := NewAlterModelOptions("Foo", map[string]interface{}{"permissions": map[interface{}]interface{}{1: "can_view"}})
			Expect(errors.CodeOf(err)).To(Equal(migrations.MigrationErrorInvalidArgument))
		})

		It("replaces the options it owns and leaves storage alone", func() {
			before := fooState()
			model(before, "Foo").Options = map[string]interface{}{"ordering": "title", "verbose_name": "foo", "custom": "kept"}

			operation, err := NewAlterModelOptions("Foo", map[string]interface{}{"verbose_name": "Foo item"})
			Expect(err).To(BeNil())
			after := forwards(operation, before, recorder)

			options := model(after, "Foo").Options
			Expect(options).To(HaveKeyWithValue("verbose_name", "Foo item"))
			Expect(options).To(HaveKeyWithValue("custom", "kept"))
			Expect(options).NotTo(HaveKey("ordering"))
			Expect(recorder.Calls()).To(BeEmpty())
		})
	})

	Describe("AlterModelManagers", func() {
		It("changes the managers only in state", func() {
			operation, err := NewAlterModelManagers("Foo", []state.Manager{{Name: "objects", Class: "FooManager"}})
			Expect(err).To(BeNil())
			after := forwards(operation, fooState(), recorder)
			Expect(model(after, "Foo").Managers).To(Equal([]state.Manager{{Name: "objects", Class: "FooManager"}}))
			Expect(recorder.Calls()).To(BeEmpty())
		})
	})

	Describe("AlterUniqueTogether and AlterIndexTogether", func() {
		It("passes the old and new sets to the editor", func() {
			before := fooState()
			model(before, "Foo").UniqueTogether = [][]string{{"title"}}

			operation, err := NewAlterUniqueTogether("Foo", [][]string{{"title", "position"}})
			Expect(err).To(BeNil())
			after := forwards(operation, before, recorder)

			Expect(model(after, "Foo").UniqueTogether).To(Equal([][]string{{"title", "position"}}))
			Expect(recorder.Calls()).To(Equal([]editortest.Call{{
				Method: editortest.MethodAlterUniqueTogether,
				Table:  "oldapp_foo",
				Args:   []interface{}{[][]string{{"title"}}, [][]string{{"title", "position"}}},
			}}))
		})

		It("swaps the sets backwards", func() {
			operation, _ := NewAlterIndexTogether("Foo", [][]string{{"title"}})
			backwards(operation, fooState(), recorder)
			Expect(recorder.Calls()).To(HaveLen(1))
			Expect(recorder.Calls()[0].Method).To(Equal(editortest.MethodAlterIndexTogether))
			Expect(recorder.Calls()[0].Args[0]).To(Equal([][]string{{"title"}}))
			Expect(recorder.Calls()[0].Args[1]).To(BeEmpty())
		})

		It("rejects empty sets", func() {
			_, err := NewAlterIndexTogether("Foo", [][]string{{}})
			Expect(errors.CodeOf(err)).To(Equal(migrations.MigrationErrorInvalidArgument))
		})
	})

	Describe("AlterOrderWithRespectTo", func() {
		It("adds the _order column when switched on and removes it when switched off", func() {
			operation, err := NewAlterOrderWithRespectTo("Foo", "position")
			Expect(err).To(BeNil())

			after := forwards(operation, fooState(), recorder)
			Expect(model(after, "Foo").OrderWithRespectTo).To(Equal("position"))
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodAddField, Table: "oldapp_foo", Args: []interface{}{"_order"}},
			}))

			recorder.Reset()
			backwards(operation, fooState(), recorder)
			Expect(recorder.Calls()).To(Equal([]editortest.Call{
				{Method: editortest.MethodRemoveField, Table: "oldapp_foo", Args: []interface{}{"_order"}},
			}))
		})
	})
})
