package state

import (
	"strings"

	"github.com/getlantern/deepcopy"

	"modelmove/logger"
)

//Field definition. Type and Default are raw SQL fragments and are never interpreted.
type Field struct {
	Name       string `json:"name" mapstructure:"name" structs:"name"`
	Type       string `json:"type" mapstructure:"type" structs:"type"`
	Column     string `json:"column,omitempty" mapstructure:"column" structs:"column,omitempty"`
	Null       bool   `json:"null,omitempty" mapstructure:"null" structs:"null,omitempty"`
	Unique     bool   `json:"unique,omitempty" mapstructure:"unique" structs:"unique,omitempty"`
	PrimaryKey bool   `json:"primary_key,omitempty" mapstructure:"primary_key" structs:"primary_key,omitempty"`
	Default    string `json:"default,omitempty" mapstructure:"default" structs:"default,omitempty"`
}

func (f *Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

func (f *Field) Clone() *Field {
	field := *f
	return &field
}

type Index struct {
	Name   string   `json:"name" mapstructure:"name" structs:"name"`
	Fields []string `json:"fields" mapstructure:"fields" structs:"fields"`
}

//Check constraint when Check is set, unique constraint over Fields otherwise.
type Constraint struct {
	Name   string   `json:"name" mapstructure:"name" structs:"name"`
	Check  string   `json:"check,omitempty" mapstructure:"check" structs:"check,omitempty"`
	Fields []string `json:"fields,omitempty" mapstructure:"fields" structs:"fields,omitempty"`
}

type Manager struct {
	Name  string `json:"name" mapstructure:"name" structs:"name"`
	Class string `json:"class" mapstructure:"class" structs:"class"`
}

//The logical description of a single model (table) as seen by migrations.
type ModelState struct {
	AppLabel           string                 `json:"app_label"`
	Name               string                 `json:"name"`
	Fields             []Field                `json:"fields,omitempty"`
	Table              string                 `json:"db_table,omitempty"`
	UniqueTogether     [][]string             `json:"unique_together,omitempty"`
	IndexTogether      [][]string             `json:"index_together,omitempty"`
	Indexes            []Index                `json:"indexes,omitempty"`
	Constraints        []Constraint           `json:"constraints,omitempty"`
	OrderWithRespectTo string                 `json:"order_with_respect_to,omitempty"`
	Options            map[string]interface{} `json:"options,omitempty"`
	Managers           []Manager              `json:"managers,omitempty"`
	Bases              []string               `json:"bases,omitempty"`
}

func (ms *ModelState) NameLower() string {
	return strings.ToLower(ms.Name)
}

//Explicit table name or "<app_label>_<model name>" in lower case
func (ms *ModelState) DbTable() string {
	if ms.Table != "" {
		return ms.Table
	}
	return strings.ToLower(ms.AppLabel + "_" + ms.Name)
}

func (ms *ModelState) Clone() *ModelState {
	modelState := new(ModelState)
	if err := deepcopy.Copy(modelState, ms); err != nil {
		logger.Error("Failed to copy model state '%s': %s", ms.Name, err.Error())
	}
	return modelState
}

func (ms *ModelState) FindField(fieldName string) *Field {
	for i := range ms.Fields {
		if ms.Fields[i].Name == fieldName {
			return &ms.Fields[i]
		}
	}
	return nil
}

func (ms *ModelState) FindIndex(indexName string) *Index {
	for i := range ms.Indexes {
		if ms.Indexes[i].Name == indexName {
			return &ms.Indexes[i]
		}
	}
	return nil
}

func (ms *ModelState) FindConstraint(constraintName string) *Constraint {
	for i := range ms.Constraints {
		if ms.Constraints[i].Name == constraintName {
			return &ms.Constraints[i]
		}
	}
	return nil
}

func NewModelState(appLabel string, name string, fields []Field) *ModelState {
	return &ModelState{AppLabel: appLabel, Name: name, Fields: fields}
}
