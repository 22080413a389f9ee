// Package neutered provides a neutered twin of every declarative schema operation.
//
// A neutered operation keeps the identity (name, arguments, reversibility) and the logical
// schema effect of the operation it is built from, but never touches storage: both storage
// hooks are no-ops. Substitute "neutered.<Name>" for "<Name>" in a migration file, or pass a
// built operation through Wrap, to record a schema change that already exists in the database.
//
// Only the two storage hooks are suppressed. Anything an operation does in its constructor or in
// StateForwards still happens.
package neutered

import (
	"fmt"

	"modelmove/server/migrations/operations"
	"modelmove/server/state"
	"modelmove/utils"
)

const Namespace = "neutered"

//Operation kinds that execute code rather than declare schema shape: neutering them means nothing.
var Excluded = []string{"RunSQL", "RunCode", "SeparateDatabaseAndState"}

//Kinds expected to be neuterable. Discovery must yield exactly this set.
var AllowList = []string{
	"AddField", "AlterField", "RemoveField", "RenameField", "AddConstraint", "AddIndex", "AlterIndexTogether",
	"AlterModelManagers", "AlterModelOptions", "AlterModelTable", "AlterOrderWithRespectTo",
	"AlterUniqueTogether", "CreateModel", "DeleteModel", "RemoveConstraint", "RemoveIndex", "RenameModel",
}

//Wraps an operation, inheriting everything but the storage hooks.
type Operation struct {
	operations.Operation
	kind *operations.Kind
}

func (o *Operation) Kind() *operations.Kind {
	return o.kind
}

//Make no forwards changes in the database
func (o *Operation) DatabaseForwards(appLabel string, editor operations.SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return nil
}

//Make no backwards changes in the database
func (o *Operation) DatabaseBackwards(appLabel string, editor operations.SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return nil
}

func (o *Operation) Deconstruct() operations.Spec {
	spec := o.Operation.Deconstruct()
	spec.Type = o.kind.QualifiedName()
	return spec
}

func (o *Operation) Describe() string {
	return "(Neutered) " + o.Operation.Describe()
}

//Original operation
func (o *Operation) Unwrap() operations.Operation {
	return o.Operation
}

//Returns every kind of catalog whose name is not listed in exclude.
func Discover(catalog []*operations.Kind, exclude []string) []*operations.Kind {
	discovered := make([]*operations.Kind, 0, len(catalog))
	for _, kind := range catalog {
		if !utils.Contains(exclude, kind.Name) {
			discovered = append(discovered, kind)
		}
	}
	return discovered
}

//Builds the neutered twin of kind. Each call yields a distinct kind: neuter once and reuse the result.
func Neuter(kind *operations.Kind) *operations.Kind {
	neutered := &operations.Kind{
		Name:      kind.Name,
		Namespace: Namespace,
		Doc:       fmt.Sprintf("(Neutered) %s", kind.Doc),
	}
	neutered.Build = func(args operations.Args, resolve operations.Resolve) (operations.Operation, error) {
		operation, err := kind.Build(args, resolve)
		if err != nil {
			return nil, err
		}
		return &Operation{Operation: operation, kind: neutered}, nil
	}
	return neutered
}
