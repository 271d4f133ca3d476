package common

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// FieldError reports a form field that failed validation. Handlers surface
// e.Error() to the user instead of letting a zero value flow into the record.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Reason
}

// FormInt parses a required numeric form field.
func FormInt(c *gin.Context, field string) (int, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return 0, &FieldError{Field: field, Reason: "is required"}
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &FieldError{Field: field, Reason: "must be a whole number"}
	}
	return n, nil
}

// FormIntOptional parses an optional numeric form field. An empty value
// yields nil; a present but malformed value is an error, never a silent zero.
func FormIntOptional(c *gin.Context, field string) (*int, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &FieldError{Field: field, Reason: "must be a whole number"}
	}
	return &n, nil
}
