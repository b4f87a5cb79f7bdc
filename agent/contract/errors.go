package contract

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrStageViolation     = errors.New("tool not admissible in current stage")
	ErrNotFound           = errors.New("referenced entity not found")
	ErrExternal           = errors.New("external collaborator failed")
	ErrInsufficientPoints = errors.New("insufficient membership points")
	ErrModelInvoke        = errors.New("model invoke failed")
	ErrSchemaViolation    = errors.New("model response violates schema")
	ErrPromptMissing      = errors.New("required prompt is missing")
)
