package transactions

import (
	"fmt"

	"github.com/getsentry/sentry-go"
)

const (
	ErrBeginFailed    = "transaction_begin_failed"
	ErrCommitFailed   = "transaction_commit_failed"
	ErrRollbackFailed = "transaction_rollback_failed"
	ErrNotPending     = "transaction_not_pending"
)

type TransactionError struct {
	Code string
	Msg  string
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("Transaction error: code='%s' msg='%s'", e.Code, e.Msg)
}

func NewTransactionError(code string, msg string) *TransactionError {
	sentry.CaptureMessage(fmt.Sprintf("%s: %s", code, msg))
	return &TransactionError{Code: code, Msg: msg}
}
