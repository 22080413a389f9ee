package state

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getlantern/deepcopy"

	"modelmove/logger"
	"modelmove/server/errors"
)

//Whole logical schema: every known model keyed by ModelKey.
type ProjectState struct {
	Models map[string]*ModelState `json:"models"`
}

func ModelKey(appLabel string, name string) string {
	return strings.ToLower(appLabel) + "." + strings.ToLower(name)
}

func NewProjectState(models ...*ModelState) *ProjectState {
	projectState := &ProjectState{Models: make(map[string]*ModelState)}
	for _, model := range models {
		projectState.Models[ModelKey(model.AppLabel, model.Name)] = model
	}
	return projectState
}

func (ps *ProjectState) Clone() *ProjectState {
	projectState := NewProjectState()
	if err := deepcopy.Copy(projectState, ps); err != nil {
		logger.Error("Failed to copy project state: %s", err.Error())
	}
	if projectState.Models == nil {
		projectState.Models = make(map[string]*ModelState)
	}
	return projectState
}

func (ps *ProjectState) HasModel(appLabel string, name string) bool {
	_, ok := ps.Models[ModelKey(appLabel, name)]
	return ok
}

func (ps *ProjectState) Model(appLabel string, name string) (*ModelState, error) {
	if model, ok := ps.Models[ModelKey(appLabel, name)]; ok {
		return model, nil
	}
	return nil, errors.NewValidationError(
		ErrModelNotFound,
		fmt.Sprintf("model '%s' is not defined in app '%s'", name, appLabel),
		nil,
	)
}

func (ps *ProjectState) AddModel(model *ModelState) error {
	key := ModelKey(model.AppLabel, model.Name)
	if _, ok := ps.Models[key]; ok {
		return errors.NewValidationError(
			ErrModelExists,
			fmt.Sprintf("model '%s' is already defined in app '%s'", model.Name, model.AppLabel),
			nil,
		)
	}
	if ps.Models == nil {
		ps.Models = make(map[string]*ModelState)
	}
	ps.Models[key] = model
	return nil
}

func (ps *ProjectState) RemoveModel(appLabel string, name string) (*ModelState, error) {
	model, err := ps.Model(appLabel, name)
	if err != nil {
		return nil, err
	}
	delete(ps.Models, ModelKey(appLabel, name))
	return model, nil
}

//Sorted model keys
func (ps *ProjectState) Keys() []string {
	keys := make([]string, 0, len(ps.Models))
	for key := range ps.Models {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
