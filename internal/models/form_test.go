package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"eventdesk/internal/models"
)

func registrationSchema() []models.FormField {
	return []models.FormField{
		{Label: "full_name", Kind: models.FieldText, Required: true},
		{Label: "contact", Kind: models.FieldPhone, Required: false},
		{Label: "tshirt", Kind: models.FieldSelect, Required: true, Options: []string{"S", "M", "L"}},
		{Label: "sessions", Kind: models.FieldMultiSelect, Required: false, Options: []string{"talks", "workshops"}},
	}
}

func TestValidateResponses(t *testing.T) {
	tests := []struct {
		name      string
		responses models.FormResponses
		ok        bool
	}{
		{
			"complete valid submission",
			models.FormResponses{
				"full_name": {Kind: models.FieldText, Text: "Ada Lovelace"},
				"contact":   {Kind: models.FieldPhone, Text: "+44 20 7946 0958"},
				"tshirt":    {Kind: models.FieldSelect, Text: "M"},
				"sessions":  {Kind: models.FieldMultiSelect, Values: []string{"talks"}},
			},
			true,
		},
		{
			"optional fields omitted",
			models.FormResponses{
				"full_name": {Kind: models.FieldText, Text: "Ada"},
				"tshirt":    {Kind: models.FieldSelect, Text: "S"},
			},
			true,
		},
		{
			"missing required field",
			models.FormResponses{
				"tshirt": {Kind: models.FieldSelect, Text: "S"},
			},
			false,
		},
		{
			"empty required text",
			models.FormResponses{
				"full_name": {Kind: models.FieldText, Text: ""},
				"tshirt":    {Kind: models.FieldSelect, Text: "S"},
			},
			false,
		},
		{
			"kind mismatch",
			models.FormResponses{
				"full_name": {Kind: models.FieldSelect, Text: "Ada"},
				"tshirt":    {Kind: models.FieldSelect, Text: "S"},
			},
			false,
		},
		{
			"select value outside options",
			models.FormResponses{
				"full_name": {Kind: models.FieldText, Text: "Ada"},
				"tshirt":    {Kind: models.FieldSelect, Text: "XXL"},
			},
			false,
		},
		{
			"multiselect value outside options",
			models.FormResponses{
				"full_name": {Kind: models.FieldText, Text: "Ada"},
				"tshirt":    {Kind: models.FieldSelect, Text: "S"},
				"sessions":  {Kind: models.FieldMultiSelect, Values: []string{"afterparty"}},
			},
			false,
		},
		{
			"unknown field rejected",
			models.FormResponses{
				"full_name": {Kind: models.FieldText, Text: "Ada"},
				"tshirt":    {Kind: models.FieldSelect, Text: "S"},
				"extra":     {Kind: models.FieldText, Text: "nope"},
			},
			false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok, reason := models.ValidateResponses(registrationSchema(), tc.responses)
			assert.Equal(t, tc.ok, ok)
			if !tc.ok {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestValidateResponsesEmptySchema(t *testing.T) {
	// Events with no form accept only empty submissions
	ok, _ := models.ValidateResponses(nil, nil)
	assert.True(t, ok)

	ok, _ = models.ValidateResponses(nil, models.FormResponses{
		"anything": {Kind: models.FieldText, Text: "x"},
	})
	assert.False(t, ok)
}

func TestRegistrationStatusIsValid(t *testing.T) {
	assert.True(t, models.RegistrationPending.IsValid())
	assert.True(t, models.RegistrationApproved.IsValid())
	assert.True(t, models.RegistrationRejected.IsValid())
	assert.False(t, models.RegistrationStatus("cancelled").IsValid())
	assert.False(t, models.RegistrationStatus("").IsValid())
}
