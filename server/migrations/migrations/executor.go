package migrations

import (
	"context"

	"modelmove/logger"
	"modelmove/server/migrations/operations"
	"modelmove/server/state"
)

//Runs migrations against an editor, keeping the stored logical state in step.
type Executor struct {
	syncer state.Syncer
	editor operations.SchemaEditor
}

func (e *Executor) Apply(ctx context.Context, migration *Migration) (*state.ProjectState, error) {
	current, err := e.syncer.Get(ctx)
	if err != nil {
		return nil, err
	}
	newState, err := migration.Apply(current, e.editor)
	if err != nil {
		return nil, err
	}
	if err := e.syncer.Save(ctx, newState); err != nil {
		return nil, err
	}
	logger.Migration(migration.Id).Info("Applied %d operation(s)", len(migration.Operations))
	return newState, nil
}

//Unapplies migration; history is every migration preceding it, oldest first. Only the models the
//history and migration describe are restored in the stored state, every other model is kept.
func (e *Executor) Unapply(ctx context.Context, history []*Migration, migration *Migration) (*state.ProjectState, error) {
	before, err := Replay(history)
	if err != nil {
		return nil, err
	}
	after, err := migration.MutateState(before)
	if err != nil {
		return nil, err
	}
	current, err := e.syncer.Get(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := migration.Unapply(before, e.editor); err != nil {
		return nil, err
	}
	restored := restore(current, before, after)
	if err := e.syncer.Save(ctx, restored); err != nil {
		return nil, err
	}
	logger.Migration(migration.Id).Info("Unapplied %d operation(s)", len(migration.Operations))
	return restored, nil
}

//Copy of current with every model known to before or after reset to its before version
func restore(current *state.ProjectState, before *state.ProjectState, after *state.ProjectState) *state.ProjectState {
	restored := current.Clone()
	for _, key := range append(before.Keys(), after.Keys()...) {
		if model, ok := before.Models[key]; ok {
			restored.Models[key] = model.Clone()
		} else {
			delete(restored.Models, key)
		}
	}
	return restored
}

//State produced by running migrations' state changes from an empty state.
func Replay(migrations []*Migration) (*state.ProjectState, error) {
	current := state.NewProjectState()
	for _, migration := range migrations {
		next, err := migration.MutateState(current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func NewExecutor(syncer state.Syncer, editor operations.SchemaEditor) *Executor {
	return &Executor{syncer: syncer, editor: editor}
}
