package pg

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// DDL errors
const (
	ErrInternal       = "internal"
	ErrExecutingDDL   = "error_exec_ddl"
	ErrNotFound       = "not_found"
	ErrAlreadyExists  = "already_exists"
	ErrUnknownDriver  = "unknown_driver"
	ErrConnectionLost = "connection_lost"
)

type DDLError struct {
	code     string
	msg      string
	table    string
	sqlState string
}

func (e *DDLError) Error() string {
	return fmt.Sprintf("DDL error:  table = '%s', code='%s'  msg = '%s'", e.table, e.code, e.msg)
}

func (e *DDLError) Json() []byte {
	j, _ := json.Marshal(map[string]string{
		"table":    e.table,
		"code":     "table:" + e.code,
		"msg":      e.msg,
		"sqlstate": e.sqlState,
	})
	return j
}

func (e *DDLError) Code() string {
	return e.code
}

func (e *DDLError) Table() string {
	return e.table
}

//Postgres SQLSTATE of the failed statement, empty when the failure did not come from the server
func (e *DDLError) SqlState() string {
	return e.sqlState
}

func NewDdlError(code string, msg string, table string) *DDLError {
	return &DDLError{code: code, msg: msg, table: table}
}

//Builds the error for a statement the database rejected.
func newExecutionError(table string, statement *DDLStmt, err error) *DDLError {
	state := sqlState(err)
	code := ErrExecutingDDL
	switch state {
	case "42P01", "42703", "42704":
		code = ErrNotFound
	case "42P07", "42701", "42710":
		code = ErrAlreadyExists
	}
	return &DDLError{
		code:     code,
		msg:      fmt.Sprintf("Error while executing statement '%s': %s", statement.Name, err.Error()),
		table:    table,
		sqlState: state,
	}
}

//Both drivers report SQLSTATE through their own error types
func sqlState(err error) string {
	var pqError *pq.Error
	if errors.As(err, &pqError) {
		return string(pqError.Code)
	}
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return pgError.Code
	}
	return ""
}
