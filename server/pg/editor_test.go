package pg

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"

	"modelmove/server/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type fakeExecer struct {
	executed []string
	err      error
}

func (fe *fakeExecer) Exec(query string, args ...interface{}) (sql.Result, error) {
	if fe.err != nil {
		return nil, fe.err
	}
	fe.executed = append(fe.executed, query)
	return nil, nil
}

var _ = Describe("SchemaEditor", func() {
	var editor *SchemaEditor
	var foo *state.ModelState

	BeforeEach(func() {
		editor = NewCollector()
		foo = state.NewModelState("oldapp", "Foo", []state.Field{
			{Name: "id", Type: "serial", PrimaryKey: true},
			{Name: "title", Type: "varchar(255)", Default: "''"},
			{Name: "position", Type: "integer", Null: true, Column: "pos"},
		})
	})

	It("creates a table with its composite constraints and indexes", func() {
		foo.UniqueTogether = [][]string{{"title", "position"}}
		foo.Indexes = []state.Index{{Name: "foo_title_idx", Fields: []string{"title"}}}
		foo.Constraints = []state.Constraint{{Name: "foo_pos_positive", Check: "pos > 0"}}

		Expect(editor.CreateModel(foo)).To(Succeed())
		Expect(editor.Statements().Codes()).To(Equal([]string{
			`CREATE TABLE "oldapp_foo" ("id" serial PRIMARY KEY, "title" varchar(255) NOT NULL DEFAULT '', "pos" integer);`,
			`ALTER TABLE "oldapp_foo" ADD CONSTRAINT "oldapp_foo_title_pos_uniq" UNIQUE ("title", "pos");`,
			`CREATE INDEX "foo_title_idx" ON "oldapp_foo" ("title");`,
			`ALTER TABLE "oldapp_foo" ADD CONSTRAINT "foo_pos_positive" CHECK (pos > 0);`,
		}))
	})

	It("drops a table", func() {
		Expect(editor.DeleteModel(foo)).To(Succeed())
		Expect(editor.Statements().Codes()).To(Equal([]string{`DROP TABLE "oldapp_foo" CASCADE;`}))
	})

	It("renames a table unless the name is unchanged", func() {
		Expect(editor.AlterDbTable(foo, "oldapp_foo", "oldapp_foo")).To(Succeed())
		Expect(editor.Statements()).To(BeEmpty())

		Expect(editor.AlterDbTable(foo, "oldapp_foo", "newapp_foo")).To(Succeed())
		Expect(editor.Statements().Codes()).To(Equal([]string{`ALTER TABLE "oldapp_foo" RENAME TO "newapp_foo";`}))
		Expect(editor.Statements()[0].Name).To(Equal("rename_table#oldapp_foo"))
	})

	It("adds and drops columns", func() {
		Expect(editor.AddField(foo, &state.Field{Name: "slug", Type: "varchar(50)", Unique: true})).To(Succeed())
		Expect(editor.RemoveField(foo, foo.FindField("position"))).To(Succeed())
		Expect(editor.Statements().Codes()).To(Equal([]string{
			`ALTER TABLE "oldapp_foo" ADD COLUMN "slug" varchar(50) NOT NULL UNIQUE;`,
			`ALTER TABLE "oldapp_foo" DROP COLUMN "pos" CASCADE;`,
		}))
	})

	It("alters only what changed on a column", func() {
		oldField := foo.FindField("title")
		newField := &state.Field{Name: "headline", Type: "text", Null: true, Unique: true}

		Expect(editor.AlterField(foo, oldField, newField)).To(Succeed())
		Expect(editor.Statements().Codes()).To(Equal([]string{
			`ALTER TABLE "oldapp_foo" RENAME COLUMN "title" TO "headline";`,
			`ALTER TABLE "oldapp_foo" ALTER COLUMN "headline" TYPE text USING "headline"::text;`,
			`ALTER TABLE "oldapp_foo" ALTER COLUMN "headline" DROP NOT NULL;`,
			`ALTER TABLE "oldapp_foo" ALTER COLUMN "headline" DROP DEFAULT;`,
			`ALTER TABLE "oldapp_foo" ADD CONSTRAINT "oldapp_foo_headline_key" UNIQUE ("headline");`,
		}))
	})

	It("issues nothing for an unchanged column", func() {
		Expect(editor.AlterField(foo, foo.FindField("title"), foo.FindField("title"))).To(Succeed())
		Expect(editor.Statements()).To(BeEmpty())
	})

	It("diffs together sets", func() {
		Expect(editor.AlterUniqueTogether(foo, [][]string{{"title"}}, [][]string{{"title"}, {"title", "position"}})).To(Succeed())
		Expect(editor.AlterIndexTogether(foo, [][]string{{"title"}}, nil)).To(Succeed())
		Expect(editor.Statements().Codes()).To(Equal([]string{
			`ALTER TABLE "oldapp_foo" ADD CONSTRAINT "oldapp_foo_title_pos_uniq" UNIQUE ("title", "pos");`,
			`DROP INDEX IF EXISTS "oldapp_foo_title_idx";`,
		}))
	})

	It("quotes identifiers", func() {
		foo.Table = `weird"name`
		Expect(editor.DeleteModel(foo)).To(Succeed())
		Expect(editor.Statements().Codes()).To(Equal([]string{`DROP TABLE "weird""name" CASCADE;`}))
	})

	Describe("executing", func() {
		It("runs every statement through the execer", func() {
			execer := &fakeExecer{}
			editor = NewSchemaEditor(execer)

			Expect(editor.AddIndex(foo, &state.Index{Name: "foo_position_idx", Fields: []string{"position"}})).To(Succeed())
			Expect(editor.Execute("UPDATE oldapp_foo SET pos = 0")).To(Succeed())
			Expect(execer.executed).To(Equal([]string{
				`CREATE INDEX "foo_position_idx" ON "oldapp_foo" ("pos");`,
				"UPDATE oldapp_foo SET pos = 0",
			}))
		})

		It("maps lib/pq errors by SQLSTATE", func() {
			editor = NewSchemaEditor(&fakeExecer{err: &pq.Error{Code: "42P07", Message: "relation already exists"}})

			err := editor.CreateModel(foo)
			Expect(err).To(BeAssignableToTypeOf(&DDLError{}))
			Expect(err.(*DDLError).Code()).To(Equal(ErrAlreadyExists))
			Expect(err.(*DDLError).Table()).To(Equal("oldapp_foo"))
			Expect(err.(*DDLError).SqlState()).To(Equal("42P07"))
		})

		It("maps pgx errors by SQLSTATE", func() {
			editor = NewSchemaEditor(&fakeExecer{err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: "42P01", Message: "relation does not exist"})})

			err := editor.DeleteModel(foo)
			Expect(err.(*DDLError).Code()).To(Equal(ErrNotFound))
		})

		It("falls back to a generic DDL error", func() {
			editor = NewSchemaEditor(&fakeExecer{err: fmt.Errorf("connection reset")})

			err := editor.DeleteModel(foo)
			Expect(err.(*DDLError).Code()).To(Equal(ErrExecutingDDL))
			Expect(string(err.(*DDLError).Json())).To(ContainSubstring("connection reset"))
		})
	})

	It("refuses unknown drivers", func() {
		_, err := Open("mysql", "")
		Expect(err.(*DDLError).Code()).To(Equal(ErrUnknownDriver))
	})
})
