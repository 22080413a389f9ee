package pg

import (
	"database/sql"

	"modelmove/logger"
	"modelmove/server/state"
	"modelmove/utils"
)

//*sql.Tx and *sql.DB both qualify
type Execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

//Postgres implementation of the migration schema editor. Without an execer it only collects statements.
type SchemaEditor struct {
	execer     Execer
	factory    *StatementFactory
	statements DdlStatementSet
}

func NewSchemaEditor(execer Execer) *SchemaEditor {
	return &SchemaEditor{execer: execer, factory: new(StatementFactory), statements: DdlStatementSet{}}
}

//Editor which records the DDL it would run without running it.
func NewCollector() *SchemaEditor {
	return NewSchemaEditor(nil)
}

//Statements issued so far, in order
func (se *SchemaEditor) Statements() DdlStatementSet {
	statements := make(DdlStatementSet, len(se.statements))
	copy(statements, se.statements)
	return statements
}

func (se *SchemaEditor) run(tableName string, statements ...*DDLStmt) error {
	for _, statement := range statements {
		se.statements.Add(statement)
		if se.execer == nil {
			continue
		}
		logger.Debug("Executing DDL: %s", statement.Code)
		if _, err := se.execer.Exec(statement.Code); err != nil {
			return newExecutionError(tableName, statement, err)
		}
	}
	return nil
}

func (se *SchemaEditor) CreateModel(model *state.ModelState) error {
	table := model.DbTable()
	columns := make([]Column, 0, len(model.Fields))
	for i := range model.Fields {
		columns = append(columns, NewColumn(&model.Fields[i]))
	}

	var statementSet = DdlStatementSet{}
	statement, err := se.factory.FactoryCreateTableStatement(table, columns)
	if err != nil {
		return err
	}
	statementSet.Add(statement)

	for _, fields := range model.UniqueTogether {
		columnNames := columnNames(model, fields)
		if statement, err = se.factory.FactoryAddUniqueStatement(table, uniqueTogetherName(table, columnNames), columnNames); err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	for _, fields := range model.IndexTogether {
		columnNames := columnNames(model, fields)
		if statement, err = se.factory.FactoryCreateIndexStatement(table, indexTogetherName(table, columnNames), columnNames); err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	for i := range model.Indexes {
		if statement, err = se.addIndexStatement(model, &model.Indexes[i]); err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	for i := range model.Constraints {
		if statement, err = se.addConstraintStatement(model, &model.Constraints[i]); err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	return se.run(table, statementSet...)
}

func (se *SchemaEditor) DeleteModel(model *state.ModelState) error {
	statement, err := se.factory.FactoryDropTableStatement(model.DbTable())
	if err != nil {
		return err
	}
	return se.run(model.DbTable(), statement)
}

func (se *SchemaEditor) AlterDbTable(model *state.ModelState, oldTable string, newTable string) error {
	if oldTable == newTable {
		return nil
	}
	statement, err := se.factory.FactoryRenameTableStatement(oldTable, newTable)
	if err != nil {
		return err
	}
	return se.run(oldTable, statement)
}

func (se *SchemaEditor) AddField(model *state.ModelState, field *state.Field) error {
	statement, err := se.factory.FactoryAddColumnStatement(model.DbTable(), NewColumn(field))
	if err != nil {
		return err
	}
	return se.run(model.DbTable(), statement)
}

func (se *SchemaEditor) RemoveField(model *state.ModelState, field *state.Field) error {
	statement, err := se.factory.FactoryDropColumnStatement(model.DbTable(), field.ColumnName())
	if err != nil {
		return err
	}
	return se.run(model.DbTable(), statement)
}

func (se *SchemaEditor) AlterField(model *state.ModelState, oldField *state.Field, newField *state.Field) error {
	table := model.DbTable()
	current, target := NewColumn(oldField), NewColumn(newField)

	var statementSet = DdlStatementSet{}
	var statement *DDLStmt
	var err error
	if current.Name != target.Name {
		if statement, err = se.factory.FactoryRenameColumnStatement(table, current.Name, target.Name); err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	if current.Type != target.Type {
		if statement, err = se.factory.FactorySetTypeStatement(table, target); err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	if current.Null != target.Null && !target.PrimaryKey {
		if statement, err = se.factory.FactorySetNullStatement(table, target); err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	if current.Default != target.Default {
		if statement, err = se.factory.FactorySetDefaultStatement(table, target); err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	if current.Unique != target.Unique {
		if target.Unique {
			statement, err = se.factory.FactoryAddUniqueStatement(table, uniqueKeyName(table, target.Name), []string{target.Name})
		} else {
			statement, err = se.factory.FactoryDropConstraintStatement(table, uniqueKeyName(table, current.Name))
		}
		if err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	if current.PrimaryKey != target.PrimaryKey {
		if target.PrimaryKey {
			statement, err = se.factory.FactoryAddPrimaryKeyStatement(table, []string{target.Name})
		} else {
			statement, err = se.factory.FactoryDropConstraintStatement(table, primaryKeyName(table))
		}
		if err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	return se.run(table, statementSet...)
}

func (se *SchemaEditor) AddIndex(model *state.ModelState, index *state.Index) error {
	statement, err := se.addIndexStatement(model, index)
	if err != nil {
		return err
	}
	return se.run(model.DbTable(), statement)
}

func (se *SchemaEditor) addIndexStatement(model *state.ModelState, index *state.Index) (*DDLStmt, error) {
	return se.factory.FactoryCreateIndexStatement(model.DbTable(), index.Name, columnNames(model, index.Fields))
}

func (se *SchemaEditor) RemoveIndex(model *state.ModelState, index *state.Index) error {
	statement, err := se.factory.FactoryDropIndexStatement(model.DbTable(), index.Name)
	if err != nil {
		return err
	}
	return se.run(model.DbTable(), statement)
}

func (se *SchemaEditor) AddConstraint(model *state.ModelState, constraint *state.Constraint) error {
	statement, err := se.addConstraintStatement(model, constraint)
	if err != nil {
		return err
	}
	return se.run(model.DbTable(), statement)
}

func (se *SchemaEditor) addConstraintStatement(model *state.ModelState, constraint *state.Constraint) (*DDLStmt, error) {
	if constraint.Check != "" {
		return se.factory.FactoryAddCheckStatement(model.DbTable(), constraint.Name, constraint.Check)
	}
	return se.factory.FactoryAddUniqueStatement(model.DbTable(), constraint.Name, columnNames(model, constraint.Fields))
}

func (se *SchemaEditor) RemoveConstraint(model *state.ModelState, constraint *state.Constraint) error {
	statement, err := se.factory.FactoryDropConstraintStatement(model.DbTable(), constraint.Name)
	if err != nil {
		return err
	}
	return se.run(model.DbTable(), statement)
}

func (se *SchemaEditor) AlterUniqueTogether(model *state.ModelState, oldSets [][]string, newSets [][]string) error {
	table := model.DbTable()
	removed, added := diffSets(oldSets, newSets)
	var statementSet = DdlStatementSet{}
	for _, fields := range removed {
		statement, err := se.factory.FactoryDropConstraintStatement(table, uniqueTogetherName(table, columnNames(model, fields)))
		if err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	for _, fields := range added {
		columns := columnNames(model, fields)
		statement, err := se.factory.FactoryAddUniqueStatement(table, uniqueTogetherName(table, columns), columns)
		if err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	return se.run(table, statementSet...)
}

func (se *SchemaEditor) AlterIndexTogether(model *state.ModelState, oldSets [][]string, newSets [][]string) error {
	table := model.DbTable()
	removed, added := diffSets(oldSets, newSets)
	var statementSet = DdlStatementSet{}
	for _, fields := range removed {
		statement, err := se.factory.FactoryDropIndexStatement(table, indexTogetherName(table, columnNames(model, fields)))
		if err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	for _, fields := range added {
		columns := columnNames(model, fields)
		statement, err := se.factory.FactoryCreateIndexStatement(table, indexTogetherName(table, columns), columns)
		if err != nil {
			return err
		}
		statementSet.Add(statement)
	}
	return se.run(table, statementSet...)
}

func (se *SchemaEditor) Execute(sql string) error {
	return se.run("", NewDdlStatement("raw_sql", sql))
}

//Column names for model field names; unknown names are taken as column names.
func columnNames(model *state.ModelState, fields []string) []string {
	columns := make([]string, 0, len(fields))
	for _, name := range fields {
		if field := model.FindField(name); field != nil {
			columns = append(columns, field.ColumnName())
		} else {
			columns = append(columns, name)
		}
	}
	return columns
}

func diffSets(oldSets [][]string, newSets [][]string) (removed [][]string, added [][]string) {
	for _, set := range oldSets {
		if !containsSet(newSets, set) {
			removed = append(removed, set)
		}
	}
	for _, set := range newSets {
		if !containsSet(oldSets, set) {
			added = append(added, set)
		}
	}
	return removed, added
}

func containsSet(sets [][]string, set []string) bool {
	for _, candidate := range sets {
		if utils.Equal(candidate, set) {
			return true
		}
	}
	return false
}
