package operations

import (
	"modelmove/server/state"
)

//A single schema change. Instances are built once per migration step and never modified afterwards.
type Operation interface {
	Kind() *Kind
	Reversible() bool
	Describe() string

	//Applies the change to the logical schema
	StateForwards(appLabel string, projectState *state.ProjectState) error
	//Applies the change to storage; from and to are the states before and after the operation
	DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error
	//Reverts the change in storage; from is the state after the operation, to is the state before it
	DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error

	Deconstruct() Spec
}

type Args map[string]interface{}

//Declarative form of an operation as it appears in migration files.
type Spec struct {
	Type string `json:"type" yaml:"type" mapstructure:"type"`
	Args Args   `json:"args,omitempty" yaml:"args,omitempty" mapstructure:"args"`
}

//Builds an operation out of a nested Spec.
type Resolve func(spec Spec) (Operation, error)

type BuildFunc func(args Args, resolve Resolve) (Operation, error)

//Operation kind: the identity an operation is declared and serialized under.
type Kind struct {
	Name      string
	Namespace string
	Doc       string
	Build     BuildFunc
}

func (k *Kind) QualifiedName() string {
	if k.Namespace == "" {
		return k.Name
	}
	return k.Namespace + "." + k.Name
}

func (k *Kind) String() string {
	return k.QualifiedName()
}
