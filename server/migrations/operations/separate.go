package operations

import (
	"modelmove/server/state"
)

//Runs StateOperations against the logical schema and DatabaseOperations against storage, independently.
type SeparateDatabaseAndState struct {
	StateOperations    []Operation
	DatabaseOperations []Operation
}

type separateDatabaseAndStateArgs struct {
	StateOperations    []Spec `mapstructure:"state_operations"`
	DatabaseOperations []Spec `mapstructure:"database_operations"`
}

func (o *SeparateDatabaseAndState) Kind() *Kind { return SeparateDatabaseAndStateKind }

func (o *SeparateDatabaseAndState) Reversible() bool {
	for _, operation := range o.DatabaseOperations {
		if !operation.Reversible() {
			return false
		}
	}
	return true
}

func (o *SeparateDatabaseAndState) Describe() string {
	return "Custom state/database change combination"
}

func (o *SeparateDatabaseAndState) Deconstruct() Spec {
	return Spec{
		Type: SeparateDatabaseAndStateKind.QualifiedName(),
		Args: o.deconstructArgs(),
	}
}

func (o *SeparateDatabaseAndState) deconstructArgs() Args {
	args := Args{}
	if len(o.StateOperations) > 0 {
		args["state_operations"] = deconstructAll(o.StateOperations)
	}
	if len(o.DatabaseOperations) > 0 {
		args["database_operations"] = deconstructAll(o.DatabaseOperations)
	}
	return args
}

func (o *SeparateDatabaseAndState) StateForwards(appLabel string, projectState *state.ProjectState) error {
	for _, operation := range o.StateOperations {
		if err := operation.StateForwards(appLabel, projectState); err != nil {
			return err
		}
	}
	return nil
}

//Every database operation sees its own before/after pair derived from from; from and to are not modified.
func (o *SeparateDatabaseAndState) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	for _, operation := range o.DatabaseOperations {
		toState := from.Clone()
		if err := operation.StateForwards(appLabel, toState); err != nil {
			return err
		}
		if err := operation.DatabaseForwards(appLabel, editor, from, toState); err != nil {
			return err
		}
		from = toState
	}
	return nil
}

func (o *SeparateDatabaseAndState) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	toStates := make([]*state.ProjectState, len(o.DatabaseOperations))
	for i, operation := range o.DatabaseOperations {
		toStates[i] = to
		to = to.Clone()
		if err := operation.StateForwards(appLabel, to); err != nil {
			return err
		}
	}
	//to now holds every database operation applied: the starting point of the reversal
	for i := len(o.DatabaseOperations) - 1; i >= 0; i-- {
		fromState := to
		to = toStates[i]
		if err := o.DatabaseOperations[i].DatabaseBackwards(appLabel, editor, fromState, to); err != nil {
			return err
		}
	}
	return nil
}

func NewSeparateDatabaseAndState(stateOperations []Operation, databaseOperations []Operation) *SeparateDatabaseAndState {
	return &SeparateDatabaseAndState{
		StateOperations:    append([]Operation(nil), stateOperations...),
		DatabaseOperations: append([]Operation(nil), databaseOperations...),
	}
}

func buildSeparateDatabaseAndState(args Args, resolve Resolve) (Operation, error) {
	var o separateDatabaseAndStateArgs
	if err := DecodeArgs("SeparateDatabaseAndState", args, &o); err != nil {
		return nil, err
	}
	stateOperations, err := resolveAll(o.StateOperations, resolve)
	if err != nil {
		return nil, err
	}
	databaseOperations, err := resolveAll(o.DatabaseOperations, resolve)
	if err != nil {
		return nil, err
	}
	return NewSeparateDatabaseAndState(stateOperations, databaseOperations), nil
}
