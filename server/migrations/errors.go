package migrations

import (
	"fmt"

	"modelmove/server/errors"
)

const (
	MigrationErrorInvalidArgument       = "invalid_argument"
	MigrationErrorInvalidDescription    = "invalid_description"
	MigrationErrorIrreversible          = "irreversible"
	MigrationErrorConfigurationMismatch = "configuration_mismatch"
)

func NewInvalidArgumentError(format string, a ...interface{}) *errors.ServerError {
	return errors.NewValidationError(MigrationErrorInvalidArgument, fmt.Sprintf(format, a...), nil)
}

func NewIrreversibleError(format string, a ...interface{}) *errors.ServerError {
	return errors.NewValidationError(MigrationErrorIrreversible, fmt.Sprintf(format, a...), nil)
}
