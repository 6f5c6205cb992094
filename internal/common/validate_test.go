package common_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pizzeria-storefront/internal/common"
)

type contact struct {
	Name  string `json:"name" validate:"required,min=3"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,clphone"`
}

func TestValidChileanPhone(t *testing.T) {
	for _, ok := range []string{"912345678", "+56912345678", "56912345678", "+56 9 1234 5678"} {
		require.True(t, common.ValidChileanPhone(ok), ok)
	}
	for _, bad := range []string{"", "812345678", "+5691234567", "+57912345678", "9123456789"} {
		require.False(t, common.ValidChileanPhone(bad), bad)
	}
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := common.Validate(contact{Name: "Al", Email: "nope", Phone: "123"})
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrValidation))

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	require.Equal(t, "must be at least 3", details["name"])
	require.Equal(t, "must be a valid email", details["email"])
	require.Equal(t, "must be a Chilean mobile number", details["phone"])
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana","extra":1}`))
	var dest contact
	err := common.DecodeJSON(req, &dest)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "INVALID_BODY", appErr.Code)
}

func TestDecodeJSONAcceptsValidPayload(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana","email":"ana@example.com","phone":"+56912345678"}`))
	var dest contact
	require.NoError(t, common.DecodeJSON(req, &dest))
	require.Equal(t, "Ana", dest.Name)
}
