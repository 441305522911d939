package custom_errors

import "strings"

// ValidationError collects every configuration problem found in one pass so the
// user can fix them all at once.
type ValidationError struct {
	Errors []error `json:"errors"`
}

// Add records err. Nil errors are ignored.
func (v *ValidationError) Add(err error) {
	if err == nil {
		return
	}
	v.Errors = append(v.Errors, err)
}

func (v *ValidationError) HasError() bool {
	return len(v.Errors) > 0
}

// Unwrap lets errors.Is and errors.As reach the collected errors.
func (v *ValidationError) Unwrap() []error {
	return v.Errors
}

func (v *ValidationError) Error() string {
	switch len(v.Errors) {
	case 0:
		return ""
	case 1:
		return "invalid configuration: " + v.Errors[0].Error()
	}
	msgs := make([]string, len(v.Errors))
	for i, err := range v.Errors {
		msgs[i] = "  - " + err.Error()
	}
	return "invalid configuration:\n" + strings.Join(msgs, "\n")
}
