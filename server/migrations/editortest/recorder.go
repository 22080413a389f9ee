//Package editortest provides a SchemaEditor that records calls instead of touching storage.
package editortest

import (
	"sync"

	"modelmove/server/state"
)

const (
	MethodCreateModel         = "CreateModel"
	MethodDeleteModel         = "DeleteModel"
	MethodAlterDbTable        = "AlterDbTable"
	MethodAddField            = "AddField"
	MethodRemoveField         = "RemoveField"
	MethodAlterField          = "AlterField"
	MethodAddIndex            = "AddIndex"
	MethodRemoveIndex         = "RemoveIndex"
	MethodAddConstraint       = "AddConstraint"
	MethodRemoveConstraint    = "RemoveConstraint"
	MethodAlterUniqueTogether = "AlterUniqueTogether"
	MethodAlterIndexTogether  = "AlterIndexTogether"
	MethodExecute             = "Execute"
)

//A single recorded editor call. Table is the model table at call time, Args holds the call specific values.
type Call struct {
	Method string
	Table  string
	Args   []interface{}
}

type Recorder struct {
	mu    sync.Mutex
	calls []Call
	//when set, every call returns this error after being recorded
	Err error
}

func NewRecorder() *Recorder {
	return &Recorder{calls: make([]Call, 0)}
}

func (r *Recorder) record(method string, model *state.ModelState, args ...interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	table := ""
	if model != nil {
		table = model.DbTable()
	}
	r.calls = append(r.calls, Call{Method: method, Table: table, Args: args})
	return r.Err
}

func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := make([]Call, len(r.calls))
	copy(calls, r.calls)
	return calls
}

func (r *Recorder) Methods() []string {
	methods := make([]string, 0)
	for _, call := range r.Calls() {
		methods = append(methods, call.Method)
	}
	return methods
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = make([]Call, 0)
}

func (r *Recorder) CreateModel(model *state.ModelState) error {
	return r.record(MethodCreateModel, model)
}

func (r *Recorder) DeleteModel(model *state.ModelState) error {
	return r.record(MethodDeleteModel, model)
}

func (r *Recorder) AlterDbTable(model *state.ModelState, oldTable string, newTable string) error {
	return r.record(MethodAlterDbTable, model, oldTable, newTable)
}

func (r *Recorder) AddField(model *state.ModelState, field *state.Field) error {
	return r.record(MethodAddField, model, field.Name)
}

func (r *Recorder) RemoveField(model *state.ModelState, field *state.Field) error {
	return r.record(MethodRemoveField, model, field.Name)
}

func (r *Recorder) AlterField(model *state.ModelState, oldField *state.Field, newField *state.Field) error {
	return r.record(MethodAlterField, model, oldField.Name, newField.Name)
}

func (r *Recorder) AddIndex(model *state.ModelState, index *state.Index) error {
	return r.record(MethodAddIndex, model, index.Name)
}

func (r *Recorder) RemoveIndex(model *state.ModelState, index *state.Index) error {
	return r.record(MethodRemoveIndex, model, index.Name)
}

func (r *Recorder) AddConstraint(model *state.ModelState, constraint *state.Constraint) error {
	return r.record(MethodAddConstraint, model, constraint.Name)
}

func (r *Recorder) RemoveConstraint(model *state.ModelState, constraint *state.Constraint) error {
	return r.record(MethodRemoveConstraint, model, constraint.Name)
}

func (r *Recorder) AlterUniqueTogether(model *state.ModelState, oldSets [][]string, newSets [][]string) error {
	return r.record(MethodAlterUniqueTogether, model, oldSets, newSets)
}

func (r *Recorder) AlterIndexTogether(model *state.ModelState, oldSets [][]string, newSets [][]string) error {
	return r.record(MethodAlterIndexTogether, model, oldSets, newSets)
}

func (r *Recorder) Execute(sql string) error {
	return r.record(MethodExecute, nil, sql)
}
