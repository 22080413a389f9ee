package operations

import (
	"fmt"
	"strings"

	"modelmove/logger"
	"modelmove/server/migrations"
	"modelmove/server/state"
)

type RunSQL struct {
	SQL             string
	ReverseSQL      string
	StateOperations []Operation
}

type runSQLArgs struct {
	SQL             string `mapstructure:"sql"`
	ReverseSQL      string `mapstructure:"reverse_sql"`
	StateOperations []Spec `mapstructure:"state_operations"`
}

func (o *RunSQL) Kind() *Kind      { return RunSQLKind }
func (o *RunSQL) Reversible() bool { return o.ReverseSQL != "" }

func (o *RunSQL) Describe() string {
	return "Raw SQL operation"
}

func (o *RunSQL) Deconstruct() Spec {
	args := Args{"sql": o.SQL}
	if o.ReverseSQL != "" {
		args["reverse_sql"] = o.ReverseSQL
	}
	if len(o.StateOperations) > 0 {
		args["state_operations"] = deconstructAll(o.StateOperations)
	}
	return Spec{Type: RunSQLKind.QualifiedName(), Args: args}
}

func (o *RunSQL) StateForwards(appLabel string, projectState *state.ProjectState) error {
	for _, operation := range o.StateOperations {
		if err := operation.StateForwards(appLabel, projectState); err != nil {
			return err
		}
	}
	return nil
}

func (o *RunSQL) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	logger.Debug("Running raw SQL for app '%s': %s", appLabel, o.SQL)
	return editor.Execute(o.SQL)
}

func (o *RunSQL) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	if o.ReverseSQL == "" {
		return migrations.NewIrreversibleError("you cannot reverse this operation: %s", o.Describe())
	}
	logger.Debug("Running reverse raw SQL for app '%s': %s", appLabel, o.ReverseSQL)
	return editor.Execute(o.ReverseSQL)
}

func NewRunSQL(sql string, reverseSQL string, stateOperations []Operation) (*RunSQL, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, migrations.NewInvalidArgumentError("RunSQL: sql is required")
	}
	return &RunSQL{SQL: sql, ReverseSQL: reverseSQL, StateOperations: append([]Operation(nil), stateOperations...)}, nil
}

func buildRunSQL(args Args, resolve Resolve) (Operation, error) {
	var o runSQLArgs
	if err := DecodeArgs("RunSQL", args, &o); err != nil {
		return nil, err
	}
	stateOperations, err := resolveAll(o.StateOperations, resolve)
	if err != nil {
		return nil, err
	}
	return NewRunSQL(o.SQL, o.ReverseSQL, stateOperations)
}

//Go code run by a RunCode operation; projectState is the state before the operation.
type CodeFunc func(appLabel string, editor SchemaEditor, projectState *state.ProjectState) error

var codeRegistry = make(map[string]CodeFunc)

//Makes code available to RunCode under name. Call it from init, before any migration is built.
func RegisterCode(name string, code CodeFunc) {
	codeRegistry[name] = code
}

type RunCode struct {
	Code        string `mapstructure:"code" structs:"code"`
	ReverseCode string `mapstructure:"reverse_code" structs:"reverse_code,omitempty"`

	code        CodeFunc
	reverseCode CodeFunc
}

func (o *RunCode) Kind() *Kind       { return RunCodeKind }
func (o *RunCode) Reversible() bool  { return o.reverseCode != nil }
func (o *RunCode) Deconstruct() Spec { return deconstruct(RunCodeKind, o) }

func (o *RunCode) Describe() string {
	return fmt.Sprintf("Raw Go operation %s", o.Code)
}

func (o *RunCode) StateForwards(appLabel string, projectState *state.ProjectState) error {
	return nil
}

func (o *RunCode) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return o.code(appLabel, editor, from)
}

func (o *RunCode) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	if o.reverseCode == nil {
		return migrations.NewIrreversibleError("you cannot reverse this operation: %s", o.Describe())
	}
	return o.reverseCode(appLabel, editor, from)
}

func NewRunCode(code string, reverseCode string) (*RunCode, error) {
	codeFunc, ok := codeRegistry[code]
	if !ok {
		return nil, migrations.NewInvalidArgumentError("RunCode: code '%s' is not registered", code)
	}
	operation := &RunCode{Code: code, ReverseCode: reverseCode, code: codeFunc}
	if reverseCode != "" {
		if operation.reverseCode, ok = codeRegistry[reverseCode]; !ok {
			return nil, migrations.NewInvalidArgumentError("RunCode: reverse code '%s' is not registered", reverseCode)
		}
	}
	return operation, nil
}

func buildRunCode(args Args, resolve Resolve) (Operation, error) {
	var o RunCode
	if err := DecodeArgs("RunCode", args, &o); err != nil {
		return nil, err
	}
	return NewRunCode(o.Code, o.ReverseCode)
}
