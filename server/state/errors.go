package state

const (
	ErrModelNotFound      = "model_not_found"
	ErrModelExists        = "model_exists"
	ErrFieldNotFound      = "field_not_found"
	ErrFieldExists        = "field_exists"
	ErrIndexNotFound      = "index_not_found"
	ErrIndexExists        = "index_exists"
	ErrConstraintNotFound = "constraint_not_found"
	ErrConstraintExists   = "constraint_exists"
	ErrStateStorage       = "state_storage"
)
