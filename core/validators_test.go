package core_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/eduos/core"
)

func TestCustomValidators(t *testing.T) {
	validate, translator := core.NewValidator()

	type dated struct {
		Date string `json:"date" validate:"isodate"`
	}
	type scored struct {
		Score float64 `json:"score" validate:"twodp"`
	}

	tests := []struct {
		name    string
		data    interface{}
		wantErr string
	}{
		{name: "Calendar date", data: dated{Date: "2024-03-01"}},
		{name: "Leap day", data: dated{Date: "2024-02-29"}},
		{name: "Leap day, common year", data: dated{Date: "2023-02-29"}, wantErr: "date must be in YYYY-MM-DD format"},
		{name: "Month 13", data: dated{Date: "2024-13-99"}, wantErr: "date must be in YYYY-MM-DD format"},
		{name: "February 30", data: dated{Date: "2024-02-30"}, wantErr: "date must be in YYYY-MM-DD format"},
		{name: "Other layout", data: dated{Date: "01/03/2024"}, wantErr: "date must be in YYYY-MM-DD format"},
		{name: "With time", data: dated{Date: "2024-03-01T10:00:00Z"}, wantErr: "date must be in YYYY-MM-DD format"},
		{name: "Whole score", data: scored{Score: 80}},
		{name: "Cents", data: scored{Score: 33.33}},
		{name: "Half", data: scored{Score: 7.5}},
		{name: "Thousandths", data: scored{Score: 33.333}, wantErr: "score must have at most 2 decimal places"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.data)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			verrs, ok := err.(validator.ValidationErrors)
			if assert.True(t, ok, "got %v", err) {
				assert.Equal(t, tt.wantErr, core.TranslateValidationErrors(verrs, translator))
			}
		})
	}
}
