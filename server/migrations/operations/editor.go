package operations

import "modelmove/server/state"

//Physical storage editor. Implementations translate each call into DDL.
type SchemaEditor interface {
	CreateModel(model *state.ModelState) error
	DeleteModel(model *state.ModelState) error
	AlterDbTable(model *state.ModelState, oldTable string, newTable string) error

	AddField(model *state.ModelState, field *state.Field) error
	RemoveField(model *state.ModelState, field *state.Field) error
	AlterField(model *state.ModelState, oldField *state.Field, newField *state.Field) error

	AddIndex(model *state.ModelState, index *state.Index) error
	RemoveIndex(model *state.ModelState, index *state.Index) error
	AddConstraint(model *state.ModelState, constraint *state.Constraint) error
	RemoveConstraint(model *state.ModelState, constraint *state.Constraint) error
	AlterUniqueTogether(model *state.ModelState, oldSets [][]string, newSets [][]string) error
	AlterIndexTogether(model *state.ModelState, oldSets [][]string, newSets [][]string) error

	Execute(sql string) error
}
