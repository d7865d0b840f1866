package ddr

import "fmt"

// FieldError reports a DDR/field-definition failure for a specific tag.
type FieldError struct {
	Tag     string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid field %s: %s", e.Tag, e.Message)
}

func fieldErr(tag, format string, args ...any) error {
	return &FieldError{Tag: tag, Message: fmt.Sprintf(format, args...)}
}
