package operations

import (
	"fmt"

	"modelmove/server/errors"
	"modelmove/server/migrations"
	"modelmove/server/state"
)

func findField(model *state.ModelState, name string) (*state.Field, error) {
	if field := model.FindField(name); field != nil {
		return field, nil
	}
	return nil, errors.NewValidationError(
		state.ErrFieldNotFound,
		fmt.Sprintf("model '%s' has no field '%s'", model.Name, name),
		nil,
	)
}

func validateField(kindName string, modelName string, name string, field *state.Field) error {
	if modelName == "" {
		return migrations.NewInvalidArgumentError("%s: model name is required", kindName)
	}
	if name == "" {
		return migrations.NewInvalidArgumentError("%s: field name is required", kindName)
	}
	if field == nil {
		return nil
	}
	if field.Name != "" && field.Name != name {
		return migrations.NewInvalidArgumentError("%s: field definition is named '%s' instead of '%s'", kindName, field.Name, name)
	}
	if field.Type == "" {
		return migrations.NewInvalidArgumentError("%s: field '%s' has no type", kindName, name)
	}
	return nil
}

type AddField struct {
	ModelName       string      `mapstructure:"model_name" structs:"model_name"`
	Name            string      `mapstructure:"name" structs:"name"`
	Field           state.Field `mapstructure:"field" structs:"field"`
	PreserveDefault bool        `mapstructure:"preserve_default" structs:"preserve_default"`
}

func (o *AddField) Kind() *Kind      { return AddFieldKind }
func (o *AddField) Reversible() bool { return true }
func (o *AddField) Deconstruct() Spec { return deconstruct(AddFieldKind, o) }

func (o *AddField) Describe() string {
	return fmt.Sprintf("Add field %s to %s", o.Name, o.ModelName)
}

func (o *AddField) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	if model.FindField(o.Name) != nil {
		return errors.NewValidationError(state.ErrFieldExists, fmt.Sprintf("model '%s' already has field '%s'", o.ModelName, o.Name), nil)
	}
	field := o.Field.Clone()
	if !o.PreserveDefault {
		field.Default = ""
	}
	model.Fields = append(model.Fields, *field)
	return nil
}

func (o *AddField) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	toModel, err := to.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	//the column is populated with the declared default even when the model keeps none
	if err := editor.AddField(toModel, &o.Field); err != nil {
		return err
	}
	if !o.PreserveDefault && o.Field.Default != "" {
		stateField, err := findField(toModel, o.Name)
		if err != nil {
			return err
		}
		return editor.AlterField(toModel, &o.Field, stateField)
	}
	return nil
}

func (o *AddField) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	fromModel, err := from.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	field, err := findField(fromModel, o.Name)
	if err != nil {
		return err
	}
	return editor.RemoveField(fromModel, field)
}

func NewAddField(modelName string, name string, field state.Field, preserveDefault bool) (*AddField, error) {
	if err := validateField("AddField", modelName, name, &field); err != nil {
		return nil, err
	}
	field.Name = name
	return &AddField{ModelName: modelName, Name: name, Field: field, PreserveDefault: preserveDefault}, nil
}

func buildAddField(args Args, resolve Resolve) (Operation, error) {
	o := AddField{PreserveDefault: true}
	if err := DecodeArgs("AddField", args, &o); err != nil {
		return nil, err
	}
	return NewAddField(o.ModelName, o.Name, o.Field, o.PreserveDefault)
}

type RemoveField struct {
	ModelName string `mapstructure:"model_name" structs:"model_name"`
	Name      string `mapstructure:"name" structs:"name"`
}

func (o *RemoveField) Kind() *Kind      { return RemoveFieldKind }
func (o *RemoveField) Reversible() bool { return true }
func (o *RemoveField) Deconstruct() Spec { return deconstruct(RemoveFieldKind, o) }

func (o *RemoveField) Describe() string {
	return fmt.Sprintf("Remove field %s from %s", o.Name, o.ModelName)
}

func (o *RemoveField) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	if _, err := findField(model, o.Name); err != nil {
		return err
	}
	fields := make([]state.Field, 0, len(model.Fields))
	for _, field := range model.Fields {
		if field.Name != o.Name {
			fields = append(fields, field)
		}
	}
	model.Fields = fields
	return nil
}

func (o *RemoveField) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	fromModel, err := from.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	field, err := findField(fromModel, o.Name)
	if err != nil {
		return err
	}
	return editor.RemoveField(fromModel, field)
}

func (o *RemoveField) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	toModel, err := to.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	field, err := findField(toModel, o.Name)
	if err != nil {
		return err
	}
	return editor.AddField(toModel, field)
}

func NewRemoveField(modelName string, name string) (*RemoveField, error) {
	if err := validateField("RemoveField", modelName, name, nil); err != nil {
		return nil, err
	}
	return &RemoveField{ModelName: modelName, Name: name}, nil
}

func buildRemoveField(args Args, resolve Resolve) (Operation, error) {
	var o RemoveField
	if err := DecodeArgs("RemoveField", args, &o); err != nil {
		return nil, err
	}
	return NewRemoveField(o.ModelName, o.Name)
}

type AlterField struct {
	ModelName       string      `mapstructure:"model_name" structs:"model_name"`
	Name            string      `mapstructure:"name" structs:"name"`
	Field           state.Field `mapstructure:"field" structs:"field"`
	PreserveDefault bool        `mapstructure:"preserve_default" structs:"preserve_default"`
}

func (o *AlterField) Kind() *Kind      { return AlterFieldKind }
func (o *AlterField) Reversible() bool { return true }
func (o *AlterField) Deconstruct() Spec { return deconstruct(AlterFieldKind, o) }

func (o *AlterField) Describe() string {
	return fmt.Sprintf("Alter field %s on %s", o.Name, o.ModelName)
}

func (o *AlterField) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	field, err := findField(model, o.Name)
	if err != nil {
		return err
	}
	*field = *o.Field.Clone()
	if !o.PreserveDefault {
		field.Default = ""
	}
	return nil
}

//Backwards runs the same code: from and to already carry the reversed roles.
func (o *AlterField) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	fromModel, err := from.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	toModel, err := to.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	fromField, err := findField(fromModel, o.Name)
	if err != nil {
		return err
	}
	toField, err := findField(toModel, o.Name)
	if err != nil {
		return err
	}
	return editor.AlterField(toModel, fromField, toField)
}

func (o *AlterField) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return o.DatabaseForwards(appLabel, editor, from, to)
}

func NewAlterField(modelName string, name string, field state.Field, preserveDefault bool) (*AlterField, error) {
	if err := validateField("AlterField", modelName, name, &field); err != nil {
		return nil, err
	}
	field.Name = name
	return &AlterField{ModelName: modelName, Name: name, Field: field, PreserveDefault: preserveDefault}, nil
}

func buildAlterField(args Args, resolve Resolve) (Operation, error) {
	o := AlterField{PreserveDefault: true}
	if err := DecodeArgs("AlterField", args, &o); err != nil {
		return nil, err
	}
	return NewAlterField(o.ModelName, o.Name, o.Field, o.PreserveDefault)
}

type RenameField struct {
	ModelName string `mapstructure:"model_name" structs:"model_name"`
	OldName   string `mapstructure:"old_name" structs:"old_name"`
	NewName   string `mapstructure:"new_name" structs:"new_name"`
}

func (o *RenameField) Kind() *Kind      { return RenameFieldKind }
func (o *RenameField) Reversible() bool { return true }
func (o *RenameField) Deconstruct() Spec { return deconstruct(RenameFieldKind, o) }

func (o *RenameField) Describe() string {
	return fmt.Sprintf("Rename field %s on %s to %s", o.OldName, o.ModelName, o.NewName)
}

func (o *RenameField) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	field, err := findField(model, o.OldName)
	if err != nil {
		return err
	}
	if model.FindField(o.NewName) != nil {
		return errors.NewValidationError(state.ErrFieldExists, fmt.Sprintf("model '%s' already has field '%s'", o.ModelName, o.NewName), nil)
	}
	field.Name = o.NewName
	renameInSets(model.UniqueTogether, o.OldName, o.NewName)
	renameInSets(model.IndexTogether, o.OldName, o.NewName)
	for i := range model.Indexes {
		renameInSet(model.Indexes[i].Fields, o.OldName, o.NewName)
	}
	for i := range model.Constraints {
		renameInSet(model.Constraints[i].Fields, o.OldName, o.NewName)
	}
	if model.OrderWithRespectTo == o.OldName {
		model.OrderWithRespectTo = o.NewName
	}
	return nil
}

func (o *RenameField) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return o.alter(appLabel, editor, from, to, o.OldName, o.NewName)
}

func (o *RenameField) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return o.alter(appLabel, editor, from, to, o.NewName, o.OldName)
}

func (o *RenameField) alter(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState, fromName string, toName string) error {
	fromModel, err := from.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	toModel, err := to.Model(appLabel, o.ModelName)
	if err != nil {
		return err
	}
	fromField, err := findField(fromModel, fromName)
	if err != nil {
		return err
	}
	toField, err := findField(toModel, toName)
	if err != nil {
		return err
	}
	return editor.AlterField(toModel, fromField, toField)
}

func NewRenameField(modelName string, oldName string, newName string) (*RenameField, error) {
	if err := validateField("RenameField", modelName, oldName, nil); err != nil {
		return nil, err
	}
	if newName == "" {
		return nil, migrations.NewInvalidArgumentError("RenameField: new field name is required")
	}
	return &RenameField{ModelName: modelName, OldName: oldName, NewName: newName}, nil
}

func buildRenameField(args Args, resolve Resolve) (Operation, error) {
	var o RenameField
	if err := DecodeArgs("RenameField", args, &o); err != nil {
		return nil, err
	}
	return NewRenameField(o.ModelName, o.OldName, o.NewName)
}

func renameInSets(sets [][]string, oldName string, newName string) {
	for i := range sets {
		renameInSet(sets[i], oldName, newName)
	}
}

func renameInSet(set []string, oldName string, newName string) {
	for i := range set {
		if set[i] == oldName {
			set[i] = newName
		}
	}
}
