package migrations

import (
	"modelmove/logger"
	_migrations "modelmove/server/migrations"
	"modelmove/server/migrations/description"
	"modelmove/server/migrations/operations"
	"modelmove/server/state"
)

type Migration struct {
	description.MigrationDescription
	Operations []operations.Operation
}

//Returns a copy of projectState with every operation applied to it. Storage is not touched.
func (m *Migration) MutateState(projectState *state.ProjectState) (*state.ProjectState, error) {
	newState := projectState.Clone()
	for _, operation := range m.Operations {
		if err := operation.StateForwards(m.AppLabel, newState); err != nil {
			return nil, err
		}
	}
	return newState, nil
}

func (m *Migration) Apply(projectState *state.ProjectState, editor operations.SchemaEditor) (*state.ProjectState, error) {
	log := logger.Migration(m.Id)
	m.logNeutered(log, "Applying")
	current := projectState.Clone()
	for _, operation := range m.Operations {
		before := current.Clone()
		if err := operation.StateForwards(m.AppLabel, current); err != nil {
			return nil, err
		}
		log.Debug("Applying '%s'", operation.Describe())
		if err := operation.DatabaseForwards(m.AppLabel, editor, before, current); err != nil {
			return nil, err
		}
	}
	return current, nil
}

type unapplyStep struct {
	operation operations.Operation
	before    *state.ProjectState
	after     *state.ProjectState
}

//projectState is the state before this migration; so is the returned state.
func (m *Migration) Unapply(projectState *state.ProjectState, editor operations.SchemaEditor) (*state.ProjectState, error) {
	log := logger.Migration(m.Id)
	m.logNeutered(log, "Unapplying")
	steps := make([]unapplyStep, 0, len(m.Operations))
	current := projectState.Clone()
	for _, operation := range m.Operations {
		if !operation.Reversible() {
			return nil, _migrations.NewIrreversibleError("operation '%s' of migration '%s' is not reversible", operation.Describe(), m.Id)
		}
		before := current.Clone()
		if err := operation.StateForwards(m.AppLabel, current); err != nil {
			return nil, err
		}
		steps = append(steps, unapplyStep{operation: operation, before: before, after: current})
		current = current.Clone()
	}

	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		log.Debug("Unapplying '%s'", step.operation.Describe())
		if err := step.operation.DatabaseBackwards(m.AppLabel, editor, step.after, step.before); err != nil {
			return nil, err
		}
	}
	return projectState.Clone(), nil
}

func (m *Migration) logNeutered(log *logger.Entry, action string) {
	if m.Neutered {
		log.Info("%s neutered migration", action)
	}
}
