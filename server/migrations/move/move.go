// Package move provides drop-in replacements for RemoveField, DeleteModel and CreateModel
// which move a model (or a field) between apps without dropping and recreating its table:
// the logical schema changes as usual while the physical table is renamed or left alone.
package move

import (
	"fmt"

	"modelmove/server/migrations/operations"
	"modelmove/server/state"
)

const Namespace = "move"

var (
	MoveFieldKind = &operations.Kind{
		Name:      "MoveField",
		Namespace: Namespace,
		Doc:       "Drop-in replacement for RemoveField: updates state without touching the DB table.",
		Build:     buildMoveField,
	}
	MoveModelOutKind = &operations.Kind{
		Name:      "MoveModelOut",
		Namespace: Namespace,
		Doc:       "Near drop-in replacement for DeleteModel, but renames the DB table instead of deleting it.",
		Build:     buildMoveModelOut,
	}
	MoveModelInKind = &operations.Kind{
		Name:      "MoveModelIn",
		Namespace: Namespace,
		Doc:       "Drop-in replacement for CreateModel, but assumes the DB table already exists.",
		Build:     buildMoveModelIn,
	}
)

func Kinds() []*operations.Kind {
	return []*operations.Kind{MoveFieldKind, MoveModelOutKind, MoveModelInKind}
}

func Lookup(name string) (*operations.Kind, bool) {
	for _, kind := range Kinds() {
		if kind.Name == name {
			return kind, true
		}
	}
	return nil, false
}

//Combines a logical-state change with an independent storage change.
func Compose(stateOperations []operations.Operation, databaseOperations []operations.Operation) *operations.SeparateDatabaseAndState {
	return operations.NewSeparateDatabaseAndState(stateOperations, databaseOperations)
}

type MoveField struct {
	*operations.SeparateDatabaseAndState
	ModelName string `mapstructure:"model_name"`
	Name      string `mapstructure:"name"`
}

func (o *MoveField) Kind() *operations.Kind { return MoveFieldKind }

func (o *MoveField) Describe() string {
	return fmt.Sprintf("Move field %s out of %s (table column kept)", o.Name, o.ModelName)
}

func (o *MoveField) Deconstruct() operations.Spec {
	return operations.Spec{
		Type: MoveFieldKind.QualifiedName(),
		Args: operations.Args{"model_name": o.ModelName, "name": o.Name},
	}
}

//Arguments as per RemoveField, i.e. from the migration generated for the app the field moved to.
func NewMoveField(modelName string, name string) (*MoveField, error) {
	removeField, err := operations.NewRemoveField(modelName, name)
	if err != nil {
		return nil, err
	}
	return &MoveField{
		SeparateDatabaseAndState: Compose([]operations.Operation{removeField}, nil),
		ModelName:                modelName,
		Name:                     name,
	}, nil
}

func buildMoveField(args operations.Args, resolve operations.Resolve) (operations.Operation, error) {
	var o MoveField
	if err := operations.DecodeArgs("MoveField", args, &o); err != nil {
		return nil, err
	}
	return NewMoveField(o.ModelName, o.Name)
}

type MoveModelOut struct {
	*operations.SeparateDatabaseAndState
	Name  string `mapstructure:"name"`
	Table string `mapstructure:"table"`
}

func (o *MoveModelOut) Kind() *operations.Kind { return MoveModelOutKind }

func (o *MoveModelOut) Describe() string {
	return fmt.Sprintf("Move model %s out (table renamed to %s)", o.Name, o.Table)
}

func (o *MoveModelOut) Deconstruct() operations.Spec {
	return operations.Spec{
		Type: MoveModelOutKind.QualifiedName(),
		Args: operations.Args{"name": o.Name, "table": o.Table},
	}
}

//name is the model being moved, as for DeleteModel; table is the destination table name,
//typically <app_label>_<model name> of the app the model is moved to.
func NewMoveModelOut(name string, table string) (*MoveModelOut, error) {
	deleteModel, err := operations.NewDeleteModel(name)
	if err != nil {
		return nil, err
	}
	alterModelTable, err := operations.NewAlterModelTable(name, table)
	if err != nil {
		return nil, err
	}
	return &MoveModelOut{
		SeparateDatabaseAndState: Compose(
			[]operations.Operation{deleteModel},
			[]operations.Operation{alterModelTable},
		),
		Name:  name,
		Table: table,
	}, nil
}

func buildMoveModelOut(args operations.Args, resolve operations.Resolve) (operations.Operation, error) {
	var o MoveModelOut
	if err := operations.DecodeArgs("MoveModelOut", args, &o); err != nil {
		return nil, err
	}
	return NewMoveModelOut(o.Name, o.Table)
}

type MoveModelIn struct {
	*operations.SeparateDatabaseAndState
	Name     string                 `mapstructure:"name"`
	Fields   []state.Field          `mapstructure:"fields"`
	Options  map[string]interface{} `mapstructure:"options"`
	Bases    []string               `mapstructure:"bases"`
	Managers []state.Manager        `mapstructure:"managers"`

	createModel *operations.CreateModel
}

func (o *MoveModelIn) Kind() *operations.Kind { return MoveModelInKind }

func (o *MoveModelIn) Describe() string {
	return fmt.Sprintf("Move model %s in (table must already exist)", o.Name)
}

func (o *MoveModelIn) Deconstruct() operations.Spec {
	return operations.Spec{
		Type: MoveModelInKind.QualifiedName(),
		Args: o.createModel.Deconstruct().Args,
	}
}

//Arguments as per CreateModel. The table must already exist, usually renamed into place by a preceding MoveModelOut.
func NewMoveModelIn(name string, fields []state.Field, options map[string]interface{}, bases []string, managers []state.Manager) (*MoveModelIn, error) {
	createModel, err := operations.NewCreateModel(name, fields, options, bases, managers)
	if err != nil {
		return nil, err
	}
	return &MoveModelIn{
		SeparateDatabaseAndState: Compose([]operations.Operation{createModel}, nil),
		Name:                     createModel.Name,
		Fields:                   createModel.Fields,
		Options:                  createModel.Options,
		Bases:                    createModel.Bases,
		Managers:                 createModel.Managers,
		createModel:              createModel,
	}, nil
}

func buildMoveModelIn(args operations.Args, resolve operations.Resolve) (operations.Operation, error) {
	var o MoveModelIn
	if err := operations.DecodeArgs("MoveModelIn", args, &o); err != nil {
		return nil, err
	}
	return NewMoveModelIn(o.Name, o.Fields, o.Options, o.Bases, o.Managers)
}
