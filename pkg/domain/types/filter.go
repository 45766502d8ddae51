package types

import "fmt"

// FilterField selects which collection attribute a list filter matches against
type FilterField string

const (
	FilterByName      FilterField = "name"
	FilterByProductID FilterField = "productId"
)

// AllFilterFields returns all valid filter fields
func AllFilterFields() []FilterField {
	return []FilterField{
		FilterByName,
		FilterByProductID,
	}
}

// IsValid checks if the filter field is valid
func (f FilterField) IsValid() bool {
	switch f {
	case FilterByName, FilterByProductID:
		return true
	default:
		return false
	}
}

// String returns the string representation of the filter field
func (f FilterField) String() string {
	return string(f)
}

// ParseFilterField parses a string into a FilterField
func ParseFilterField(s string) (FilterField, error) {
	field := FilterField(s)
	if !field.IsValid() {
		return "", fmt.Errorf("invalid filter field: %s", s)
	}
	return field, nil
}

// GuessFilterField infers the filter field from raw input: digit-only text is
// taken as a product ID lookup, anything else as a name search.
// TODO revisit with an explicit field selector; digit-only names are ambiguous.
func GuessFilterField(text string) FilterField {
	if text == "" {
		return FilterByName
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return FilterByName
		}
	}
	return FilterByProductID
}
