package pg

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/lib/pq"

	"modelmove/server/state"
)

// DDL column meta
type Column struct {
	Name       string
	Type       string
	Null       bool
	Unique     bool
	PrimaryKey bool
	Default    string
}

func NewColumn(field *state.Field) Column {
	return Column{
		Name:       field.ColumnName(),
		Type:       field.Type,
		Null:       field.Null,
		Unique:     field.Unique,
		PrimaryKey: field.PrimaryKey,
		Default:    field.Default,
	}
}

//Auxilary template functions
var ddlFuncs = template.FuncMap{
	"quote":   pq.QuoteIdentifier,
	"columns": quoteColumns,
}

func quoteColumns(columns []string) string {
	quoted := make([]string, 0, len(columns))
	for _, column := range columns {
		quoted = append(quoted, pq.QuoteIdentifier(column))
	}
	return strings.Join(quoted, ", ")
}

const templColumn = `{{define "column"}}{{quote .Name}} {{.Type}}{{if .PrimaryKey}} PRIMARY KEY{{else}}{{if not .Null}} NOT NULL{{end}}{{if .Unique}} UNIQUE{{end}}{{end}}{{if .Default}} DEFAULT {{.Default}}{{end}}{{end}}`

var statementsMap = map[string]string{
	"create_table":         `CREATE TABLE {{quote .Table}} ({{range $i, $column := .Columns}}{{if $i}}, {{end}}{{template "column" $column}}{{end}});`,
	"drop_table":           `DROP TABLE {{quote .Table}} CASCADE;`,
	"rename_table":         `ALTER TABLE {{quote .Table}} RENAME TO {{quote .NewTable}};`,
	"add_column":           `ALTER TABLE {{quote .Table}} ADD COLUMN {{template "column" .Column}};`,
	"drop_column":          `ALTER TABLE {{quote .Table}} DROP COLUMN {{quote .Name}} CASCADE;`,
	"rename_column":        `ALTER TABLE {{quote .Table}} RENAME COLUMN {{quote .CurrentName}} TO {{quote .NewName}};`,
	"alter_column_type":    `ALTER TABLE {{quote .Table}} ALTER COLUMN {{quote .Column.Name}} TYPE {{.Column.Type}} USING {{quote .Column.Name}}::{{.Column.Type}};`,
	"alter_column_null":    `ALTER TABLE {{quote .Table}} ALTER COLUMN {{quote .Column.Name}} {{if .Column.Null}}DROP{{else}}SET{{end}} NOT NULL;`,
	"alter_column_default": `ALTER TABLE {{quote .Table}} ALTER COLUMN {{quote .Column.Name}} {{if .Column.Default}}SET DEFAULT {{.Column.Default}}{{else}}DROP DEFAULT{{end}};`,
	"add_unique":           `ALTER TABLE {{quote .Table}} ADD CONSTRAINT {{quote .Name}} UNIQUE ({{columns .Columns}});`,
	"add_check":            `ALTER TABLE {{quote .Table}} ADD CONSTRAINT {{quote .Name}} CHECK ({{.Check}});`,
	"add_primary_key":      `ALTER TABLE {{quote .Table}} ADD CONSTRAINT {{quote .Name}} PRIMARY KEY ({{columns .Columns}});`,
	"drop_constraint":      `ALTER TABLE {{quote .Table}} DROP CONSTRAINT {{quote .Name}};`,
	"create_index":         `CREATE INDEX {{quote .Name}} ON {{quote .Table}} ({{columns .Columns}});`,
	"drop_index":           `DROP INDEX IF EXISTS {{quote .Name}};`,
}

var parsedStatements = parseStatements()

func parseStatements() map[string]*template.Template {
	parsed := make(map[string]*template.Template, len(statementsMap))
	for name, text := range statementsMap {
		parsed[name] = template.Must(template.Must(template.New(name).Funcs(ddlFuncs).Parse(templColumn)).Parse(text))
	}
	return parsed
}

//Renders DDL statements for a single table.
type StatementFactory struct{}

func (sf *StatementFactory) build(statement string, tableName string, context map[string]interface{}) (*DDLStmt, error) {
	var buffer bytes.Buffer
	context["Table"] = tableName
	statementTemplate, ok := parsedStatements[statement]
	if !ok {
		return nil, NewDdlError(ErrInternal, fmt.Sprintf("unknown statement '%s'", statement), tableName)
	}
	if e := statementTemplate.Execute(&buffer, context); e != nil {
		return nil, NewDdlError(ErrInternal, e.Error(), tableName)
	}
	return NewDdlStatement(fmt.Sprintf("%s#%s", statement, tableName), buffer.String()), nil
}

func (sf *StatementFactory) FactoryCreateTableStatement(tableName string, columns []Column) (*DDLStmt, error) {
	return sf.build("create_table", tableName, map[string]interface{}{"Columns": columns})
}

func (sf *StatementFactory) FactoryDropTableStatement(tableName string) (*DDLStmt, error) {
	return sf.build("drop_table", tableName, map[string]interface{}{})
}

func (sf *StatementFactory) FactoryRenameTableStatement(tableName string, newTableName string) (*DDLStmt, error) {
	return sf.build("rename_table", tableName, map[string]interface{}{"NewTable": newTableName})
}

func (sf *StatementFactory) FactoryAddColumnStatement(tableName string, column Column) (*DDLStmt, error) {
	return sf.build("add_column", tableName, map[string]interface{}{"Column": column})
}

func (sf *StatementFactory) FactoryDropColumnStatement(tableName string, columnName string) (*DDLStmt, error) {
	return sf.build("drop_column", tableName, map[string]interface{}{"Name": columnName})
}

func (sf *StatementFactory) FactoryRenameColumnStatement(tableName string, currentName string, newName string) (*DDLStmt, error) {
	return sf.build("rename_column", tableName, map[string]interface{}{"CurrentName": currentName, "NewName": newName})
}

func (sf *StatementFactory) FactorySetTypeStatement(tableName string, column Column) (*DDLStmt, error) {
	return sf.build("alter_column_type", tableName, map[string]interface{}{"Column": column})
}

func (sf *StatementFactory) FactorySetNullStatement(tableName string, column Column) (*DDLStmt, error) {
	return sf.build("alter_column_null", tableName, map[string]interface{}{"Column": column})
}

func (sf *StatementFactory) FactorySetDefaultStatement(tableName string, column Column) (*DDLStmt, error) {
	return sf.build("alter_column_default", tableName, map[string]interface{}{"Column": column})
}

func (sf *StatementFactory) FactoryAddUniqueStatement(tableName string, name string, columns []string) (*DDLStmt, error) {
	return sf.build("add_unique", tableName, map[string]interface{}{"Name": name, "Columns": columns})
}

func (sf *StatementFactory) FactoryAddCheckStatement(tableName string, name string, check string) (*DDLStmt, error) {
	return sf.build("add_check", tableName, map[string]interface{}{"Name": name, "Check": check})
}

func (sf *StatementFactory) FactoryAddPrimaryKeyStatement(tableName string, columns []string) (*DDLStmt, error) {
	return sf.build("add_primary_key", tableName, map[string]interface{}{"Name": primaryKeyName(tableName), "Columns": columns})
}

func (sf *StatementFactory) FactoryDropConstraintStatement(tableName string, name string) (*DDLStmt, error) {
	return sf.build("drop_constraint", tableName, map[string]interface{}{"Name": name})
}

func (sf *StatementFactory) FactoryCreateIndexStatement(tableName string, name string, columns []string) (*DDLStmt, error) {
	return sf.build("create_index", tableName, map[string]interface{}{"Name": name, "Columns": columns})
}

func (sf *StatementFactory) FactoryDropIndexStatement(tableName string, name string) (*DDLStmt, error) {
	return sf.build("drop_index", tableName, map[string]interface{}{"Name": name})
}

//Postgres default names, so constraints created inline can be dropped later
func primaryKeyName(tableName string) string {
	return tableName + "_pkey"
}

func uniqueKeyName(tableName string, columnName string) string {
	return fmt.Sprintf("%s_%s_key", tableName, columnName)
}

func uniqueTogetherName(tableName string, columns []string) string {
	return fmt.Sprintf("%s_%s_uniq", tableName, strings.Join(columns, "_"))
}

func indexTogetherName(tableName string, columns []string) string {
	return fmt.Sprintf("%s_%s_idx", tableName, strings.Join(columns, "_"))
}
