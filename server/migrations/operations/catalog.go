package operations

import (
	"github.com/fatih/structs"
	"github.com/mitchellh/mapstructure"

	"modelmove/server/migrations"
)

//Standard operation kinds.
//Build funcs must not reference these variables, directly or through Kind(), to keep package initialization acyclic.
var (
	AddFieldKind    = &Kind{Name: "AddField", Doc: "Adds a field to a model.", Build: buildAddField}
	AlterFieldKind  = &Kind{Name: "AlterField", Doc: "Alters a field's database column (e.g. null, type, default, unique).", Build: buildAlterField}
	RemoveFieldKind = &Kind{Name: "RemoveField", Doc: "Removes a field from a model.", Build: buildRemoveField}
	RenameFieldKind = &Kind{Name: "RenameField", Doc: "Renames a field on the model. Might affect db_column too.", Build: buildRenameField}

	AddConstraintKind    = &Kind{Name: "AddConstraint", Doc: "Adds a check or unique constraint to a model.", Build: buildAddConstraint}
	RemoveConstraintKind = &Kind{Name: "RemoveConstraint", Doc: "Removes a named constraint from a model.", Build: buildRemoveConstraint}
	AddIndexKind         = &Kind{Name: "AddIndex", Doc: "Adds an index on a model.", Build: buildAddIndex}
	RemoveIndexKind      = &Kind{Name: "RemoveIndex", Doc: "Removes an index from a model.", Build: buildRemoveIndex}

	CreateModelKind             = &Kind{Name: "CreateModel", Doc: "Creates a model's table.", Build: buildCreateModel}
	DeleteModelKind             = &Kind{Name: "DeleteModel", Doc: "Drops a model's table.", Build: buildDeleteModel}
	RenameModelKind             = &Kind{Name: "RenameModel", Doc: "Renames a model.", Build: buildRenameModel}
	AlterModelTableKind         = &Kind{Name: "AlterModelTable", Doc: "Renames a model's table.", Build: buildAlterModelTable}
	AlterModelOptionsKind       = &Kind{Name: "AlterModelOptions", Doc: "Sets new model options that don't directly affect the database schema (like verbose_name, permissions, ordering).", Build: buildAlterModelOptions}
	AlterModelManagersKind      = &Kind{Name: "AlterModelManagers", Doc: "Alters the model's managers.", Build: buildAlterModelManagers}
	AlterUniqueTogetherKind     = &Kind{Name: "AlterUniqueTogether", Doc: "Changes the value of unique_together to the target one.", Build: buildAlterUniqueTogether}
	AlterIndexTogetherKind      = &Kind{Name: "AlterIndexTogether", Doc: "Changes the value of index_together to the target one.", Build: buildAlterIndexTogether}
	AlterOrderWithRespectToKind = &Kind{Name: "AlterOrderWithRespectTo", Doc: "Represents a change with the order_with_respect_to option.", Build: buildAlterOrderWithRespectTo}

	RunSQLKind                   = &Kind{Name: "RunSQL", Doc: "Runs some raw SQL. A reverse SQL statement may be provided.", Build: buildRunSQL}
	RunCodeKind                  = &Kind{Name: "RunCode", Doc: "Runs registered Go code in a context suitable for doing versioned data migrations.", Build: buildRunCode}
	SeparateDatabaseAndStateKind = &Kind{Name: "SeparateDatabaseAndState", Doc: "Takes two lists of operations - ones that will be used for the database, and ones that will be used for the state change.", Build: buildSeparateDatabaseAndState}
)

//Every standard operation kind. The returned slice is a fresh copy.
func Catalog() []*Kind {
	return []*Kind{
		AddFieldKind, AlterFieldKind, RemoveFieldKind, RenameFieldKind,
		AddConstraintKind, RemoveConstraintKind, AddIndexKind, RemoveIndexKind,
		CreateModelKind, DeleteModelKind, RenameModelKind, AlterModelTableKind,
		AlterModelOptionsKind, AlterModelManagersKind, AlterUniqueTogetherKind,
		AlterIndexTogetherKind, AlterOrderWithRespectToKind,
		RunSQLKind, RunCodeKind, SeparateDatabaseAndStateKind,
	}
}

func Lookup(name string) (*Kind, bool) {
	for _, kind := range Catalog() {
		if kind.Name == name {
			return kind, true
		}
	}
	return nil, false
}

//Strictly decodes declarative args into out: unknown keys are an invalid-argument error.
func DecodeArgs(kindName string, args Args, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{ErrorUnused: true, Result: out})
	if err != nil {
		return migrations.NewInvalidArgumentError("failed to decode arguments of '%s': %s", kindName, err.Error())
	}
	if err := decoder.Decode(map[string]interface{}(args)); err != nil {
		return migrations.NewInvalidArgumentError("failed to decode arguments of '%s': %s", kindName, err.Error())
	}
	return nil
}

func deconstruct(kind *Kind, operation interface{}) Spec {
	return Spec{Type: kind.QualifiedName(), Args: structs.Map(operation)}
}

func resolveAll(specs []Spec, resolve Resolve) ([]Operation, error) {
	resolved := make([]Operation, 0, len(specs))
	for _, spec := range specs {
		operation, err := resolve(spec)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, operation)
	}
	return resolved, nil
}

func deconstructAll(operations []Operation) []interface{} {
	specs := make([]interface{}, 0, len(operations))
	for _, operation := range operations {
		spec := operation.Deconstruct()
		specs = append(specs, map[string]interface{}{"type": spec.Type, "args": map[string]interface{}(spec.Args)})
	}
	return specs
}
