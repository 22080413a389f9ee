package migrations_test

import (
	"modelmove/server/errors"
	_migrations "modelmove/server/migrations"
	"modelmove/server/migrations/description"
	. "modelmove/server/migrations/migrations"
	"modelmove/server/migrations/move"
	"modelmove/server/migrations/neutered"
	"modelmove/server/migrations/operations"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("OperationFactory", func() {
	operationFactory := NewOperationFactory(nil)

	It("resolves each namespace", func() {
		standard, err := operationFactory.Factory(operations.Spec{Type: "DeleteModel", Args: operations.Args{"name": "Foo"}})
		Expect(err).To(BeNil())
		Expect(standard.Kind()).To(Equal(operations.DeleteModelKind))

		neuteredOperation, err := operationFactory.Factory(operations.Spec{Type: "neutered.DeleteModel", Args: operations.Args{"name": "Foo"}})
		Expect(err).To(BeNil())
		Expect(neuteredOperation).To(BeAssignableToTypeOf(&neutered.Operation{}))
		Expect(neuteredOperation.Kind().QualifiedName()).To(Equal("neutered.DeleteModel"))

		moveOperation, err := operationFactory.Factory(operations.Spec{Type: "move.MoveModelOut", Args: operations.Args{"name": "Foo", "table": "newapp_foo"}})
		Expect(err).To(BeNil())
		Expect(moveOperation.Kind()).To(Equal(move.MoveModelOutKind))
	})

	It("rejects unknown types", func() {
		for _, operationType := range []string{"DropEverything", "neutered.RunSQL", "move.RemoveField", "other.DeleteModel", "neutered."} {
			_, err := operationFactory.Factory(operations.Spec{Type: operationType})
			Expect(errors.CodeOf(err)).To(Equal(_migrations.MigrationErrorInvalidArgument), operationType)
		}
	})

	It("resolves nested operations in any namespace", func() {
		operation, err := operationFactory.Factory(operations.Spec{Type: "SeparateDatabaseAndState", Args: operations.Args{
			"state_operations": []interface{}{
				map[string]interface{}{"type": "move.MoveField", "args": map[string]interface{}{"model_name": "Foo", "name": "title"}},
			},
			"database_operations": []interface{}{
				map[string]interface{}{"type": "neutered.RemoveField", "args": map[string]interface{}{"model_name": "Foo", "name": "title"}},
			},
		}})
		Expect(err).To(BeNil())

		separate := operation.(*operations.SeparateDatabaseAndState)
		Expect(separate.StateOperations[0].Kind()).To(Equal(move.MoveFieldKind))
		Expect(separate.DatabaseOperations[0].Kind().QualifiedName()).To(Equal("neutered.RemoveField"))
	})

	It("lists standard, neutered and move kinds", func() {
		Expect(operationFactory.Kinds()).To(HaveLen(len(operations.Catalog()) + len(neutered.AllowList) + len(move.Kinds())))
	})
})

var _ = Describe("MigrationFactory", func() {
	migrationFactory := NewMigrationFactory(nil)

	It("builds every operation in order", func() {
		migration, err := migrationFactory.Factory(&description.MigrationDescription{
			Id:       "0002_move_foo",
			AppLabel: "oldapp",
			Operations: []operations.Spec{
				{Type: "move.MoveField", Args: operations.Args{"model_name": "Foo", "name": "title"}},
				{Type: "neutered.AlterModelTable", Args: operations.Args{"name": "Foo", "table": "legacy_foo"}},
			},
		})
		Expect(err).To(BeNil())
		Expect(migration.Id).To(Equal("0002_move_foo"))
		Expect(migration.Operations).To(HaveLen(2))
		Expect(migration.Operations[0].Kind()).To(Equal(move.MoveFieldKind))
		Expect(migration.Operations[1].Kind().QualifiedName()).To(Equal("neutered.AlterModelTable"))
	})

	It("validates the description first", func() {
		_, err := migrationFactory.Factory(&description.MigrationDescription{Id: "0001_initial"})
		Expect(errors.CodeOf(err)).To(Equal(_migrations.MigrationErrorInvalidDescription))
	})

	It("fails on the first invalid operation", func() {
		_, err := migrationFactory.Factory(&description.MigrationDescription{
			Id:         "0001_initial",
			AppLabel:   "oldapp",
			Operations: []operations.Spec{{Type: "DeleteModel", Args: operations.Args{}}},
		})
		Expect(errors.CodeOf(err)).To(Equal(_migrations.MigrationErrorInvalidArgument))
	})
})
