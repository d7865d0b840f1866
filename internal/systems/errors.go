package systems

import "fmt"

// FieldError reports that a system couldn't find a required subfield, or
// found a field with no groups at all, in a DDR-parsed field it was handed.
type FieldError struct {
	Tag     string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Tag, e.Message)
}

func fieldErr(tag, format string, args ...any) error {
	return &FieldError{Tag: tag, Message: fmt.Sprintf(format, args...)}
}
