package migrations

import (
	"strings"

	_migrations "modelmove/server/migrations"
	"modelmove/server/migrations/description"
	"modelmove/server/migrations/move"
	"modelmove/server/migrations/neutered"
	"modelmove/server/migrations/operations"
)

//Resolves declarative operation specs: plain names come from the standard catalog,
//"neutered.X" from the neutered registry and "move.X" from the move composers.
type OperationFactory struct {
	neutered *neutered.Registry
}

func (of *OperationFactory) Factory(spec operations.Spec) (operations.Operation, error) {
	kind, err := of.Lookup(spec.Type)
	if err != nil {
		return nil, err
	}
	return kind.Build(spec.Args, of.Factory)
}

func (of *OperationFactory) Lookup(qualifiedName string) (*operations.Kind, error) {
	namespace, name := "", qualifiedName
	if i := strings.Index(qualifiedName, "."); i >= 0 {
		namespace, name = qualifiedName[:i], qualifiedName[i+1:]
	}

	var kind *operations.Kind
	var ok bool
	switch namespace {
	case "":
		kind, ok = operations.Lookup(name)
	case neutered.Namespace:
		kind, ok = of.neutered.Lookup(name)
	case move.Namespace:
		kind, ok = move.Lookup(name)
	}
	if !ok {
		return nil, _migrations.NewInvalidArgumentError("unknown operation type '%s'", qualifiedName)
	}
	return kind, nil
}

//Every kind the factory resolves: standard, neutered, move
func (of *OperationFactory) Kinds() []*operations.Kind {
	kinds := operations.Catalog()
	kinds = append(kinds, of.neutered.Kinds()...)
	return append(kinds, move.Kinds()...)
}

func NewOperationFactory(registry *neutered.Registry) *OperationFactory {
	if registry == nil {
		registry = neutered.DefaultRegistry()
	}
	return &OperationFactory{neutered: registry}
}

type MigrationFactory struct {
	operationFactory *OperationFactory
}

func (mf *MigrationFactory) Factory(migrationDescription *description.MigrationDescription) (*Migration, error) {
	if err := migrationDescription.Validate(); err != nil {
		return nil, err
	}
	migration := &Migration{MigrationDescription: *migrationDescription}
	for i := range migrationDescription.Operations {
		operation, err := mf.operationFactory.Factory(migrationDescription.Operations[i])
		if err != nil {
			return nil, err
		}
		migration.Operations = append(migration.Operations, operation)
	}
	return migration, nil
}

func NewMigrationFactory(operationFactory *OperationFactory) *MigrationFactory {
	if operationFactory == nil {
		operationFactory = NewOperationFactory(nil)
	}
	return &MigrationFactory{operationFactory: operationFactory}
}
