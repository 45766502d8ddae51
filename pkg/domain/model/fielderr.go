package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldPath addresses a form field, including elements of variable-length
// rows ("ingredients[2].amount"). Paths are built through the constructors
// below rather than assembled from raw strings at call sites.
type FieldPath string

// Field addresses a top-level field
func Field(name string) FieldPath {
	return FieldPath(name)
}

// Indexed addresses a sub-field of the i-th row of a list field
func Indexed(name string, i int, sub string) FieldPath {
	return FieldPath(fmt.Sprintf("%s[%d].%s", name, i, sub))
}

// String returns the dot/bracket notation of the path
func (p FieldPath) String() string {
	return string(p)
}

// Root returns the top-level field name of the path
func (p FieldPath) Root() string {
	s := string(p)
	if i := strings.IndexAny(s, "[."); i >= 0 {
		return s[:i]
	}
	return s
}

// Index returns the row index of an indexed path, or false for plain fields
func (p FieldPath) Index() (int, bool) {
	s := string(p)
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return 0, false
	}
	close := strings.IndexByte(s[open:], ']')
	if close < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[open+1 : open+close])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ErrorSource tells whether a field error came from the backend or from
// client-side validation before submission
type ErrorSource string

const (
	ErrorSourceServer ErrorSource = "server"
	ErrorSourceClient ErrorSource = "client"
)

// FieldError is a validation message attached to a specific form field.
// Server errors carry only the first reported message per field.
type FieldError struct {
	Field   FieldPath
	Message string
	Source  ErrorSource
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
