package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/gbakws/testimonial-server/internal/errors"
	"github.com/gbakws/testimonial-server/internal/validation"
)

type linkRequest struct {
	Name        string `json:"name" validate:"required,max=10"`
	Designation string `json:"designation,omitempty" validate:"max=5"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,submission_status"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(linkRequest{Name: "Bilal"}))
	assert.NoError(t, v.Validate(statusRequest{Status: "APPROVED"}))
}

func TestValidator_FieldDetails(t *testing.T) {
	v := validation.New()

	err := v.Validate(linkRequest{Name: "", Designation: "Volunteer"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
	assert.Equal(t, map[string]string{
		"name":        "is required",
		"designation": "must not exceed 5 characters",
	}, domainErr.Details)
}

func TestValidator_SubmissionStatus(t *testing.T) {
	v := validation.New()

	err := v.Validate(statusRequest{Status: "approved"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, map[string]string{
		"status": "must be one of: PENDING APPROVED REJECTED",
	}, domainErr.Details)
}
