package operations

import (
	"fmt"

	"modelmove/server/errors"
	"modelmove/server/migrations"
	"modelmove/server/state"
)

type AddIndex struct {
	ModelName string      `mapstructure:"model_name" structs:"model_name"`
	Index     state.Index `mapstructure:"index" structs:"index"`
}

func (o *AddIndex) Kind() *Kind      { return AddIndexKind }
func (o *AddIndex) Reversible() bool { return true }
func (o *AddIndex) Deconstruct() Spec { return deconstruct(AddIndexKind, o) }

func (o *AddIndex) Describe() string {
	return fmt.Sprintf("Create index %s on field(s) %v of model %s", o.Index.Name, o.Index.Fields, o.ModelName)
}

func (o *AddIndex) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	if model.FindIndex(o.Index.Name) != nil {
		return errors.NewValidationError(state.ErrIndexExists, fmt.Sprintf("model '%s' already has index '%s'", o.ModelName, o.Index.Name), nil)
	}
	model.Indexes = append(model.Indexes, state.Index{Name: o.Index.Name, Fields: append([]string(nil), o.Index.Fields...)})
	return nil
}

func (o *AddIndex) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	model, err := to.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	return editor.AddIndex(model, &o.Index)
}

func (o *AddIndex) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	model, err := from.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	return editor.RemoveIndex(model, &o.Index)
}

func NewAddIndex(modelName string, index state.Index) (*AddIndex, error) {
	if modelName == "" {
		return nil, migrations.NewInvalidArgumentError("AddIndex: model name is required")
	}
	if index.Name == "" {
		return nil, migrations.NewInvalidArgumentError("AddIndex: indexes passed to AddIndex operations require a name argument")
	}
	if len(index.Fields) == 0 {
		return nil, migrations.NewInvalidArgumentError("AddIndex: index '%s' has no fields", index.Name)
	}
	index.Fields = append([]string(nil), index.Fields...)
	return &AddIndex{ModelName: modelName, Index: index}, nil
}

func buildAddIndex(args Args, resolve Resolve) (Operation, error) {
	var o AddIndex
	if err := DecodeArgs("AddIndex", args, &o); err != nil {
		return nil, err
	}
	return NewAddIndex(o.ModelName, o.Index)
}

type RemoveIndex struct {
	ModelName string `mapstructure:"model_name" structs:"model_name"`
	Name      string `mapstructure:"name" structs:"name"`
}

func (o *RemoveIndex) Kind() *Kind      { return RemoveIndexKind }
func (o *RemoveIndex) Reversible() bool { return true }
func (o *RemoveIndex) Deconstruct() Spec { return deconstruct(RemoveIndexKind, o) }

func (o *RemoveIndex) Describe() string {
	return fmt.Sprintf("Remove index %s from %s", o.Name, o.ModelName)
}

func (o *RemoveIndex) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	if _, err := findIndex(model, o.Name); err != nil {
		return err
	}
	indexes := make([]state.Index, 0, len(model.Indexes))
	for _, index := range model.Indexes {
		if index.Name != o.Name {
			indexes = append(indexes, index)
		}
	}
	model.Indexes = indexes
	return nil
}

func (o *RemoveIndex) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	model, err := from.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	index, err := findIndex(model, o.Name)
	if err != nil {
		return err
	}
	return editor.RemoveIndex(model, index)
}

func (o *RemoveIndex) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	model, err := to.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	index, err := findIndex(model, o.Name)
	if err != nil {
		return err
	}
	return editor.AddIndex(model, index)
}

func NewRemoveIndex(modelName string, name string) (*RemoveIndex, error) {
	if modelName == "" || name == "" {
		return nil, migrations.NewInvalidArgumentError("RemoveIndex: model name and index name are required")
	}
	return &RemoveIndex{ModelName: modelName, Name: name}, nil
}

func buildRemoveIndex(args Args, resolve Resolve) (Operation, error) {
	var o RemoveIndex
	if err := DecodeArgs("RemoveIndex", args, &o); err != nil {
		return nil, err
	}
	return NewRemoveIndex(o.ModelName, o.Name)
}

func findIndex(model *state.ModelState, name string) (*state.Index, error) {
	if index := model.FindIndex(name); index != nil {
		return index, nil
	}
	return nil, errors.NewValidationError(state.ErrIndexNotFound, fmt.Sprintf("model '%s' has no index '%s'", model.Name, name), nil)
}

type AddConstraint struct {
	ModelName  string           `mapstructure:"model_name" structs:"model_name"`
	Constraint state.Constraint `mapstructure:"constraint" structs:"constraint"`
}

func (o *AddConstraint) Kind() *Kind      { return AddConstraintKind }
func (o *AddConstraint) Reversible() bool { return true }
func (o *AddConstraint) Deconstruct() Spec { return deconstruct(AddConstraintKind, o) }

func (o *AddConstraint) Describe() string {
	return fmt.Sprintf("Create constraint %s on model %s", o.Constraint.Name, o.ModelName)
}

func (o *AddConstraint) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	if model.FindConstraint(o.Constraint.Name) != nil {
		return errors.NewValidationError(state.ErrConstraintExists, fmt.Sprintf("model '%s' already has constraint '%s'", o.ModelName, o.Constraint.Name), nil)
	}
	constraint := o.Constraint
	constraint.Fields = append([]string(nil), o.Constraint.Fields...)
	model.Constraints = append(model.Constraints, constraint)
	return nil
}

func (o *AddConstraint) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	model, err := to.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	return editor.AddConstraint(model, &o.Constraint)
}

func (o *AddConstraint) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	model, err := from.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	return editor.RemoveConstraint(model, &o.Constraint)
}

func NewAddConstraint(modelName string, constraint state.Constraint) (*AddConstraint, error) {
	if modelName == "" {
		return nil, migrations.NewInvalidArgumentError("AddConstraint: model name is required")
	}
	if constraint.Name == "" {
		return nil, migrations.NewInvalidArgumentError("AddConstraint: constraint name is required")
	}
	if constraint.Check == "" && len(constraint.Fields) == 0 {
		return nil, migrations.NewInvalidArgumentError("AddConstraint: constraint '%s' has neither a check nor fields", constraint.Name)
	}
	constraint.Fields = append([]string(nil), constraint.Fields...)
	return &AddConstraint{ModelName: modelName, Constraint: constraint}, nil
}

func buildAddConstraint(args Args, resolve Resolve) (Operation, error) {
	var o AddConstraint
	if err := DecodeArgs("AddConstraint", args, &o); err != nil {
		return nil, err
	}
	return NewAddConstraint(o.ModelName, o.Constraint)
}

type RemoveConstraint struct {
	ModelName string `mapstructure:"model_name" structs:"model_name"`
	Name      string `mapstructure:"name" structs:"name"`
}

func (o *RemoveConstraint) Kind() *Kind      { return RemoveConstraintKind }
func (o *RemoveConstraint) Reversible() bool { return true }
func (o *RemoveConstraint) Deconstruct() Spec { return deconstruct(RemoveConstraintKind, o) }

func (o *RemoveConstraint) Describe() string {
	return fmt.Sprintf("Remove constraint %s from model %s", o.Name, o.ModelName)
}

func (o *RemoveConstraint) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	if _, err := findConstraint(model, o.Name); err != nil {
		return err
	}
	constraints := make([]state.Constraint, 0, len(model.Constraints))
	for _, constraint := range model.Constraints {
		if constraint.Name != o.Name {
			constraints = append(constraints, constraint)
		}
	}
	model.Constraints = constraints
	return nil
}

func (o *RemoveConstraint) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	model, err := from.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	constraint, err := findConstraint(model, o.Name)
	if err != nil {
		return err
	}
	return editor.RemoveConstraint(model, constraint)
}

func (o *RemoveConstraint) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	model, err := to.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	constraint, err := findConstraint(model, o.Name)
	if err != nil {
		return err
	}
	return editor.AddConstraint(model, constraint)
}

func NewRemoveConstraint(modelName string, name string) (*RemoveConstraint, error) {
	if modelName == "" || name == "" {
		return nil, migrations.NewInvalidArgumentError("RemoveConstraint: model name and constraint name are required")
	}
	return &RemoveConstraint{ModelName: modelName, Name: name}, nil
}

func buildRemoveConstraint(args Args, resolve Resolve) (Operation, error) {
	var o RemoveConstraint
	if err := DecodeArgs("RemoveConstraint", args, &o); err != nil {
		return nil, err
	}
	return NewRemoveConstraint(o.ModelName, o.Name)
}

func findConstraint(model *state.ModelState, name string) (*state.Constraint, error) {
	if constraint := model.FindConstraint(name); constraint != nil {
		return constraint, nil
	}
	return nil, errors.NewValidationError(state.ErrConstraintNotFound, fmt.Sprintf("model '%s' has no constraint '%s'", model.Name, name), nil)
}
