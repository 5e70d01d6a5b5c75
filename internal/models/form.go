package models

import "fmt"

// FieldKind discriminates the form field union. Submissions are validated
// against the event's form schema exactly once, at the system boundary.
type FieldKind string

const (
	FieldText        FieldKind = "text"
	FieldSelect      FieldKind = "select"
	FieldMultiSelect FieldKind = "multiselect"
	FieldPhone       FieldKind = "phone"
	FieldEmail       FieldKind = "email"
)

// FormField is one field of an event's registration form schema.
type FormField struct {
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	// Options is only meaningful for select/multiselect kinds.
	Options []string `json:"options,omitempty"`
}

// FieldValue is a single submitted value, tagged with the kind it was
// validated as. Text/Phone/Email use Text; MultiSelect uses Values; Select
// uses Text holding the chosen option.
type FieldValue struct {
	Kind   FieldKind `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Values []string  `json:"values,omitempty"`
}

// FormResponses maps field label to its submitted value.
type FormResponses map[string]FieldValue

// ValidateResponses checks a submission against the schema. It returns a
// human-readable reason for the first violation found, or ok=true.
func ValidateResponses(schema []FormField, responses FormResponses) (ok bool, reason string) {
	for _, field := range schema {
		value, present := responses[field.Label]
		if !present {
			if field.Required {
				return false, fmt.Sprintf("missing required field %q", field.Label)
			}
			continue
		}

		if value.Kind != field.Kind {
			return false, fmt.Sprintf("field %q: expected kind %s, got %s", field.Label, field.Kind, value.Kind)
		}

		switch field.Kind {
		case FieldText, FieldPhone, FieldEmail:
			if field.Required && value.Text == "" {
				return false, fmt.Sprintf("field %q: empty value", field.Label)
			}
		case FieldSelect:
			if !containsOption(field.Options, value.Text) {
				return false, fmt.Sprintf("field %q: %q is not a valid option", field.Label, value.Text)
			}
		case FieldMultiSelect:
			if field.Required && len(value.Values) == 0 {
				return false, fmt.Sprintf("field %q: no options selected", field.Label)
			}
			for _, v := range value.Values {
				if !containsOption(field.Options, v) {
					return false, fmt.Sprintf("field %q: %q is not a valid option", field.Label, v)
				}
			}
		default:
			return false, fmt.Sprintf("field %q: unknown kind %s", field.Label, field.Kind)
		}
	}

	// Reject values for fields the schema does not define.
	known := make(map[string]bool, len(schema))
	for _, field := range schema {
		known[field.Label] = true
	}
	for label := range responses {
		if !known[label] {
			return false, fmt.Sprintf("unknown field %q", label)
		}
	}

	return true, ""
}

func containsOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
