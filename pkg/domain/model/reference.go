package model

// ReferenceOption is a selectable link to another entity. The zero value
// means "no selection"; a freshly created entity is wrapped into one of these
// before being injected back into a form field.
type ReferenceOption struct {
	Value int64  `json:"value"`
	Label string `json:"label"`
}

// IsZero reports whether no entity is selected
func (o ReferenceOption) IsZero() bool {
	return o.Value == 0 && o.Label == ""
}
