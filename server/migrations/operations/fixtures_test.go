package operations_test

import (
	"fmt"

	. "modelmove/server/migrations/operations"
	"modelmove/server/state"

	. "github.com/onsi/gomega"
)

const appLabel = "oldapp"

func fooState() *state.ProjectState {
	return state.NewProjectState(state.NewModelState(appLabel, "Foo", []state.Field{
		{Name: "id", Type: "serial", PrimaryKey: true},
		{Name: "title", Type: "varchar(255)"},
		{Name: "position", Type: "integer", Null: true},
	}))
}

func resolve(spec Spec) (Operation, error) {
	kind, ok := Lookup(spec.Type)
	if !ok {
		return nil, fmt.Errorf("unknown operation type '%s'", spec.Type)
	}
	return kind.Build(spec.Args, resolve)
}

//Runs operation forwards the way a migration does and returns the state after it.
func forwards(operation Operation, before *state.ProjectState, editor SchemaEditor) *state.ProjectState {
	after := before.Clone()
	Expect(operation.StateForwards(appLabel, after)).To(Succeed())
	Expect(operation.DatabaseForwards(appLabel, editor, before, after)).To(Succeed())
	return after
}

//Runs operation backwards from the state it produced out of before.
func backwards(operation Operation, before *state.ProjectState, editor SchemaEditor) {
	after := before.Clone()
	Expect(operation.StateForwards(appLabel, after)).To(Succeed())
	Expect(operation.DatabaseBackwards(appLabel, editor, after, before)).To(Succeed())
}

func model(projectState *state.ProjectState, name string) *state.ModelState {
	model, err := projectState.Model(appLabel, name)
	Expect(err).To(BeNil())
	return model
}
