package operations

import (
	"encoding/json"
	"fmt"
	"strings"

	"modelmove/server/migrations"
	"modelmove/server/state"
	"modelmove/utils"
)

//Options recognized by CreateModel; anything else lands in ModelState.Options untouched.
type modelOptions struct {
	DbTable            string                 `mapstructure:"db_table"`
	UniqueTogether     [][]string             `mapstructure:"unique_together"`
	IndexTogether      [][]string             `mapstructure:"index_together"`
	Indexes            []state.Index          `mapstructure:"indexes"`
	Constraints        []state.Constraint     `mapstructure:"constraints"`
	OrderWithRespectTo string                 `mapstructure:"order_with_respect_to"`
	Other              map[string]interface{} `mapstructure:",remain"`
}

type CreateModel struct {
	Name     string                 `mapstructure:"name" structs:"name"`
	Fields   []state.Field          `mapstructure:"fields" structs:"fields"`
	Options  map[string]interface{} `mapstructure:"options" structs:"options,omitempty"`
	Bases    []string               `mapstructure:"bases" structs:"bases,omitempty"`
	Managers []state.Manager        `mapstructure:"managers" structs:"managers,omitempty"`

	options modelOptions
}

func (o *CreateModel) Kind() *Kind      { return CreateModelKind }
func (o *CreateModel) Reversible() bool { return true }
func (o *CreateModel) Deconstruct() Spec { return deconstruct(CreateModelKind, o) }

func (o *CreateModel) Describe() string {
	return fmt.Sprintf("Create model %s", o.Name)
}

func (o *CreateModel) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model := state.NewModelState(appLabel, o.Name, make([]state.Field, 0, len(o.Fields)))
	for _, field := range o.Fields {
		model.Fields = append(model.Fields, *field.Clone())
	}
	model.Table = o.options.DbTable
	model.UniqueTogether = copySets(o.options.UniqueTogether)
	model.IndexTogether = copySets(o.options.IndexTogether)
	model.Indexes = append([]state.Index(nil), o.options.Indexes...)
	model.Constraints = append([]state.Constraint(nil), o.options.Constraints...)
	model.OrderWithRespectTo = o.options.OrderWithRespectTo
	if len(o.options.Other) > 0 {
		model.Options = make(map[string]interface{}, len(o.options.Other))
		for key, value := range o.options.Other {
			model.Options[key] = value
		}
	}
	model.Bases = append([]string(nil), o.Bases...)
	model.Managers = append([]state.Manager(nil), o.Managers...)
	return projectState.AddModel(model.Clone())
}

func (o *CreateModel) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	model, err := to.Model(appLabel, o.Name)
	if err != nil {
		return err
	}
	return editor.CreateModel(model)
}

func (o *CreateModel) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	model, err := from.Model(appLabel, o.Name)
	if err != nil {
		return err
	}
	return editor.DeleteModel(model)
}

func NewCreateModel(name string, fields []state.Field, options map[string]interface{}, bases []string, managers []state.Manager) (*CreateModel, error) {
	if name == "" {
		return nil, migrations.NewInvalidArgumentError("CreateModel: model name is required")
	}
	seenFields := make([]string, 0, len(fields))
	for i := range fields {
		if err := validateField("CreateModel", name, fields[i].Name, &fields[i]); err != nil {
			return nil, err
		}
		if utils.Contains(seenFields, fields[i].Name) {
			return nil, migrations.NewInvalidArgumentError("CreateModel: found duplicate value %s in CreateModel fields argument", fields[i].Name)
		}
		seenFields = append(seenFields, fields[i].Name)
	}
	seenBases := make([]string, 0, len(bases))
	for _, base := range bases {
		if utils.Contains(seenBases, strings.ToLower(base)) {
			return nil, migrations.NewInvalidArgumentError("CreateModel: found duplicate value %s in CreateModel bases argument", base)
		}
		seenBases = append(seenBases, strings.ToLower(base))
	}
	seenManagers := make([]string, 0, len(managers))
	for _, manager := range managers {
		if utils.Contains(seenManagers, manager.Name) {
			return nil, migrations.NewInvalidArgumentError("CreateModel: found duplicate value %s in CreateModel managers argument", manager.Name)
		}
		seenManagers = append(seenManagers, manager.Name)
	}
	if err := validateOptions("CreateModel", options); err != nil {
		return nil, err
	}
	var parsedOptions modelOptions
	if err := DecodeArgs("CreateModel.options", options, &parsedOptions); err != nil {
		return nil, err
	}
	return &CreateModel{
		Name:     name,
		Fields:   append([]state.Field(nil), fields...),
		Options:  options,
		Bases:    append([]string(nil), bases...),
		Managers: append([]state.Manager(nil), managers...),
		options:  parsedOptions,
	}, nil
}

//Model states are copied and stored as JSON, so options must encode
func validateOptions(kindName string, options map[string]interface{}) error {
	if _, err := json.Marshal(options); err != nil {
		return migrations.NewInvalidArgumentError("%s: options are not serializable: %s", kindName, err.Error())
	}
	return nil
}

func buildCreateModel(args Args, resolve Resolve) (Operation, error) {
	var o CreateModel
	if err := DecodeArgs("CreateModel", args, &o); err != nil {
		return nil, err
	}
	return NewCreateModel(o.Name, o.Fields, o.Options, o.Bases, o.Managers)
}

type DeleteModel struct {
	Name string `mapstructure:"name" structs:"name"`
}

func (o *DeleteModel) Kind() *Kind      { return DeleteModelKind }
func (o *DeleteModel) Reversible() bool { return true }
func (o *DeleteModel) Deconstruct() Spec { return deconstruct(DeleteModelKind, o) }

func (o *DeleteModel) Describe() string {
	return fmt.Sprintf("Delete model %s", o.Name)
}

func (o *DeleteModel) StateForwards(appLabel string, projectState *state.ProjectState) error {
	_, err := projectState.RemoveModel(appLabel, o.Name)
	return err
}

func (o *DeleteModel) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	model, err := from.Model(appLabel, o.Name)
	if err != nil {
		return err
	}
	return editor.DeleteModel(model)
}

func (o *DeleteModel) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	model, err := to.Model(appLabel, o.Name)
	if err != nil {
		return err
	}
	return editor.CreateModel(model)
}

func NewDeleteModel(name string) (*DeleteModel, error) {
	if name == "" {
		return nil, migrations.NewInvalidArgumentError("DeleteModel: model name is required")
	}
	return &DeleteModel{Name: name}, nil
}

func buildDeleteModel(args Args, resolve Resolve) (Operation, error) {
	var o DeleteModel
	if err := DecodeArgs("DeleteModel", args, &o); err != nil {
		return nil, err
	}
	return NewDeleteModel(o.Name)
}

type RenameModel struct {
	OldName string `mapstructure:"old_name" structs:"old_name"`
	NewName string `mapstructure:"new_name" structs:"new_name"`
}

func (o *RenameModel) Kind() *Kind      { return RenameModelKind }
func (o *RenameModel) Reversible() bool { return true }
func (o *RenameModel) Deconstruct() Spec { return deconstruct(RenameModelKind, o) }

func (o *RenameModel) Describe() string {
	return fmt.Sprintf("Rename model %s to %s", o.OldName, o.NewName)
}

func (o *RenameModel) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.RemoveModel(appLabel, o.OldName)
	if err != nil {
		return err
	}
	renamed := model.Clone()
	renamed.Name = o.NewName
	if err := projectState.AddModel(renamed); err != nil {
		projectState.AddModel(model)
		return err
	}
	return nil
}

func (o *RenameModel) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return renameTable(appLabel, editor, from, to, o.OldName, o.NewName)
}

func (o *RenameModel) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return renameTable(appLabel, editor, from, to, o.NewName, o.OldName)
}

func NewRenameModel(oldName string, newName string) (*RenameModel, error) {
	if oldName == "" || newName == "" {
		return nil, migrations.NewInvalidArgumentError("RenameModel: both old and new model names are required")
	}
	if oldName == newName {
		return nil, migrations.NewInvalidArgumentError("RenameModel: model '%s' is renamed to itself", oldName)
	}
	return &RenameModel{OldName: oldName, NewName: newName}, nil
}

func buildRenameModel(args Args, resolve Resolve) (Operation, error) {
	var o RenameModel
	if err := DecodeArgs("RenameModel", args, &o); err != nil {
		return nil, err
	}
	return NewRenameModel(o.OldName, o.NewName)
}

type AlterModelTable struct {
	Name  string `mapstructure:"name" structs:"name"`
	Table string `mapstructure:"table" structs:"table"`
}

func (o *AlterModelTable) Kind() *Kind      { return AlterModelTableKind }
func (o *AlterModelTable) Reversible() bool { return true }
func (o *AlterModelTable) Deconstruct() Spec { return deconstruct(AlterModelTableKind, o) }

func (o *AlterModelTable) Describe() string {
	table := o.Table
	if table == "" {
		table = "(default)"
	}
	return fmt.Sprintf("Rename table for %s to %s", o.Name, table)
}

func (o *AlterModelTable) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.Name)
	if err != nil {
		return err
	}
	model.Table = o.Table
	return nil
}

func (o *AlterModelTable) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return renameTable(appLabel, editor, from, to, o.Name, o.Name)
}

func (o *AlterModelTable) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return o.DatabaseForwards(appLabel, editor, from, to)
}

//An empty table resets the model to its default table name.
func NewAlterModelTable(name string, table string) (*AlterModelTable, error) {
	if name == "" {
		return nil, migrations.NewInvalidArgumentError("AlterModelTable: model name is required")
	}
	return &AlterModelTable{Name: name, Table: table}, nil
}

func buildAlterModelTable(args Args, resolve Resolve) (Operation, error) {
	var o AlterModelTable
	if err := DecodeArgs("AlterModelTable", args, &o); err != nil {
		return nil, err
	}
	return NewAlterModelTable(o.Name, o.Table)
}

func renameTable(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState, fromName string, toName string) error {
	oldModel, err := from.Model(appLabel, fromName)
	if err != nil {
		return err
	}
	newModel, err := to.Model(appLabel, toName)
	if err != nil {
		return err
	}
	return editor.AlterDbTable(newModel, oldModel.DbTable(), newModel.DbTable())
}

//Options AlterModelOptions owns: a key missing from the operation is removed from the model.
var alterOptionKeys = []string{
	"base_manager_name",
	"default_manager_name",
	"default_related_name",
	"get_latest_by",
	"managed",
	"ordering",
	"permissions",
	"default_permissions",
	"select_on_save",
	"verbose_name",
	"verbose_name_plural",
}

type AlterModelOptions struct {
	Name    string                 `mapstructure:"name" structs:"name"`
	Options map[string]interface{} `mapstructure:"options" structs:"options"`
}

func (o *AlterModelOptions) Kind() *Kind      { return AlterModelOptionsKind }
func (o *AlterModelOptions) Reversible() bool { return true }
func (o *AlterModelOptions) Deconstruct() Spec { return deconstruct(AlterModelOptionsKind, o) }

func (o *AlterModelOptions) Describe() string {
	return fmt.Sprintf("Change Meta options on %s", o.Name)
}

func (o *AlterModelOptions) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.Name)
	if err != nil {
		return err
	}
	options := make(map[string]interface{}, len(model.Options)+len(o.Options))
	for key, value := range model.Options {
		if _, ok := o.Options[key]; !ok && utils.Contains(alterOptionKeys, key) {
			continue
		}
		options[key] = value
	}
	for key, value := range o.Options {
		options[key] = value
	}
	model.Options = options
	return nil
}

func (o *AlterModelOptions) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return nil
}

func (o *AlterModelOptions) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return nil
}

func NewAlterModelOptions(name string, options map[string]interface{}) (*AlterModelOptions, error) {
	if name == "" {
		return nil, migrations.NewInvalidArgumentError("AlterModelOptions: model name is required")
	}
	if err := validateOptions("AlterModelOptions", options); err != nil {
		return nil, err
	}
	copied := make(map[string]interface{}, len(options))
	for key, value := range options {
		copied[key] = value
	}
	return &AlterModelOptions{Name: name, Options: copied}, nil
}

func buildAlterModelOptions(args Args, resolve Resolve) (Operation, error) {
	var o AlterModelOptions
	if err := DecodeArgs("AlterModelOptions", args, &o); err != nil {
		return nil, err
	}
	return NewAlterModelOptions(o.Name, o.Options)
}

type AlterModelManagers struct {
	Name     string          `mapstructure:"name" structs:"name"`
	Managers []state.Manager `mapstructure:"managers" structs:"managers"`
}

func (o *AlterModelManagers) Kind() *Kind      { return AlterModelManagersKind }
func (o *AlterModelManagers) Reversible() bool { return true }
func (o *AlterModelManagers) Deconstruct() Spec { return deconstruct(AlterModelManagersKind, o) }

func (o *AlterModelManagers) Describe() string {
	return fmt.Sprintf("Change managers on %s", o.Name)
}

func (o *AlterModelManagers) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.Name)
	if err != nil {
		return err
	}
	model.Managers = append([]state.Manager(nil), o.Managers...)
	return nil
}

func (o *AlterModelManagers) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return nil
}

func (o *AlterModelManagers) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return nil
}

func NewAlterModelManagers(name string, managers []state.Manager) (*AlterModelManagers, error) {
	if name == "" {
		return nil, migrations.NewInvalidArgumentError("AlterModelManagers: model name is required")
	}
	return &AlterModelManagers{Name: name, Managers: append([]state.Manager(nil), managers...)}, nil
}

func buildAlterModelManagers(args Args, resolve Resolve) (Operation, error) {
	var o AlterModelManagers
	if err := DecodeArgs("AlterModelManagers", args, &o); err != nil {
		return nil, err
	}
	return NewAlterModelManagers(o.Name, o.Managers)
}

type AlterUniqueTogether struct {
	Name           string     `mapstructure:"name" structs:"name"`
	UniqueTogether [][]string `mapstructure:"unique_together" structs:"unique_together"`
}

func (o *AlterUniqueTogether) Kind() *Kind      { return AlterUniqueTogetherKind }
func (o *AlterUniqueTogether) Reversible() bool { return true }
func (o *AlterUniqueTogether) Deconstruct() Spec { return deconstruct(AlterUniqueTogetherKind, o) }

func (o *AlterUniqueTogether) Describe() string {
	return fmt.Sprintf("Alter unique_together for %s (%d constraint(s))", o.Name, len(o.UniqueTogether))
}

func (o *AlterUniqueTogether) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.Name)
	if err != nil {
		return err
	}
	model.UniqueTogether = copySets(o.UniqueTogether)
	return nil
}

func (o *AlterUniqueTogether) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	oldModel, newModel, err := modelPair(appLabel, from, to, o.Name)
	if err != nil {
		return err
	}
	return editor.AlterUniqueTogether(newModel, oldModel.UniqueTogether, newModel.UniqueTogether)
}

func (o *AlterUniqueTogether) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return o.DatabaseForwards(appLabel, editor, from, to)
}

func NewAlterUniqueTogether(name string, uniqueTogether [][]string) (*AlterUniqueTogether, error) {
	if err := validateSets("AlterUniqueTogether", name, uniqueTogether); err != nil {
		return nil, err
	}
	return &AlterUniqueTogether{Name: name, UniqueTogether: copySets(uniqueTogether)}, nil
}

func buildAlterUniqueTogether(args Args, resolve Resolve) (Operation, error) {
	var o AlterUniqueTogether
	if err := DecodeArgs("AlterUniqueTogether", args, &o); err != nil {
		return nil, err
	}
	return NewAlterUniqueTogether(o.Name, o.UniqueTogether)
}

type AlterIndexTogether struct {
	Name          string     `mapstructure:"name" structs:"name"`
	IndexTogether [][]string `mapstructure:"index_together" structs:"index_together"`
}

func (o *AlterIndexTogether) Kind() *Kind      { return AlterIndexTogetherKind }
func (o *AlterIndexTogether) Reversible() bool { return true }
func (o *AlterIndexTogether) Deconstruct() Spec { return deconstruct(AlterIndexTogetherKind, o) }

func (o *AlterIndexTogether) Describe() string {
	return fmt.Sprintf("Alter index_together for %s (%d constraint(s))", o.Name, len(o.IndexTogether))
}

func (o *AlterIndexTogether) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.Name)
	if err != nil {
		return err
	}
	model.IndexTogether = copySets(o.IndexTogether)
	return nil
}

func (o *AlterIndexTogether) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	oldModel, newModel, err := modelPair(appLabel, from, to, o.Name)
	if err != nil {
		return err
	}
	return editor.AlterIndexTogether(newModel, oldModel.IndexTogether, newModel.IndexTogether)
}

func (o *AlterIndexTogether) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return o.DatabaseForwards(appLabel, editor, from, to)
}

func NewAlterIndexTogether(name string, indexTogether [][]string) (*AlterIndexTogether, error) {
	if err := validateSets("AlterIndexTogether", name, indexTogether); err != nil {
		return nil, err
	}
	return &AlterIndexTogether{Name: name, IndexTogether: copySets(indexTogether)}, nil
}

func buildAlterIndexTogether(args Args, resolve Resolve) (Operation, error) {
	var o AlterIndexTogether
	if err := DecodeArgs("AlterIndexTogether", args, &o); err != nil {
		return nil, err
	}
	return NewAlterIndexTogether(o.Name, o.IndexTogether)
}

const orderFieldName = "_order"

type AlterOrderWithRespectTo struct {
	Name               string `mapstructure:"name" structs:"name"`
	OrderWithRespectTo string `mapstructure:"order_with_respect_to" structs:"order_with_respect_to"`
}

func (o *AlterOrderWithRespectTo) Kind() *Kind      { return AlterOrderWithRespectToKind }
func (o *AlterOrderWithRespectTo) Reversible() bool { return true }
func (o *AlterOrderWithRespectTo) Deconstruct() Spec {
	return deconstruct(AlterOrderWithRespectToKind, o)
}

func (o *AlterOrderWithRespectTo) Describe() string {
	return fmt.Sprintf("Set order_with_respect_to on %s to %s", o.Name, o.OrderWithRespectTo)
}

func (o *AlterOrderWithRespectTo) StateForwards(appLabel string, projectState *state.ProjectState) error {
	model, err := projectState.Model(appLabel, o.Name)
	if err != nil {
		return err
	}
	model.OrderWithRespectTo = o.OrderWithRespectTo
	return nil
}

//Adds the _order column when ordering is switched on and drops it when switched off.
func (o *AlterOrderWithRespectTo) DatabaseForwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	oldModel, newModel, err := modelPair(appLabel, from, to, o.Name)
	if err != nil {
		return err
	}
	orderField := &state.Field{Name: orderFieldName, Type: "integer", Default: "0"}
	switch {
	case oldModel.OrderWithRespectTo == "" && newModel.OrderWithRespectTo != "":
		return editor.AddField(newModel, orderField)
	case oldModel.OrderWithRespectTo != "" && newModel.OrderWithRespectTo == "":
		return editor.RemoveField(oldModel, orderField)
	}
	return nil
}

func (o *AlterOrderWithRespectTo) DatabaseBackwards(appLabel string, editor SchemaEditor, from *state.ProjectState, to *state.ProjectState) error {
	return o.DatabaseForwards(appLabel, editor, from, to)
}

func NewAlterOrderWithRespectTo(name string, orderWithRespectTo string) (*AlterOrderWithRespectTo, error) {
	if name == "" {
		return nil, migrations.NewInvalidArgumentError("AlterOrderWithRespectTo: model name is required")
	}
	return &AlterOrderWithRespectTo{Name: name, OrderWithRespectTo: orderWithRespectTo}, nil
}

func buildAlterOrderWithRespectTo(args Args, resolve Resolve) (Operation, error) {
	var o AlterOrderWithRespectTo
	if err := DecodeArgs("AlterOrderWithRespectTo", args, &o); err != nil {
		return nil, err
	}
	return NewAlterOrderWithRespectTo(o.Name, o.OrderWithRespectTo)
}

func modelPair(appLabel string, from *state.ProjectState, to *state.ProjectState, name string) (*state.ModelState, *state.ModelState, error) {
	oldModel, err := from.Model(appLabel, name)
	if err != nil {
		return nil, nil, err
	}
	newModel, err := to.Model(appLabel, name)
	if err != nil {
		return nil, nil, err
	}
	return oldModel, newModel, nil
}

func validateSets(kindName string, name string, sets [][]string) error {
	if name == "" {
		return migrations.NewInvalidArgumentError("%s: model name is required", kindName)
	}
	for _, set := range sets {
		if len(set) == 0 {
			return migrations.NewInvalidArgumentError("%s: empty field set for model '%s'", kindName, name)
		}
	}
	return nil
}

func copySets(sets [][]string) [][]string {
	if sets == nil {
		return nil
	}
	copied := make([][]string, 0, len(sets))
	for _, set := range sets {
		copied = append(copied, append([]string(nil), set...))
	}
	return copied
}
