package transactions

import (
	"modelmove/server/pg"
	"modelmove/server/state"
)

type State int

const (
	Pending    State = 0
	Committed  State = 1
	RolledBack State = 2
)

//Database side of a migration run. *sql.Tx qualifies.
type DbTransaction interface {
	pg.Execer
	Commit() error
	Rollback() error
}

//Logical state side of a migration run: changes are staged in memory until the database commits.
type StateTransaction struct {
	initialState *state.ProjectState
	staged       *state.MemorySyncer
	state        State
}

func (st *StateTransaction) InitialState() *state.ProjectState {
	return st.initialState.Clone()
}

//Syncer the run saves its intermediate states to
func (st *StateTransaction) Syncer() state.Syncer {
	return st.staged
}

func (st *StateTransaction) SetState(state State) {
	st.state = state
}

func (st *StateTransaction) State() State {
	return st.state
}

func NewStateTransaction(initialState *state.ProjectState) *StateTransaction {
	return &StateTransaction{
		initialState: initialState.Clone(),
		staged:       state.NewMemorySyncer(initialState),
		state:        Pending,
	}
}

type GlobalTransaction struct {
	StateTransaction *StateTransaction
	DbTransaction    DbTransaction
}

//Schema editor running its DDL inside the database transaction
func (gt *GlobalTransaction) Editor() *pg.SchemaEditor {
	return pg.NewSchemaEditor(gt.DbTransaction)
}
