package failure_test

import (
	"errors"
	"fmt"
	"homestay/shared/failure"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedMsg  string
	}{
		{name: "bad request", err: failure.BadRequest(errors.New("check_out must be after check_in")), expectedCode: http.StatusBadRequest, expectedMsg: "check_out must be after check_in"},
		{name: "bad request from string", err: failure.BadRequestFromString("invalid payment method"), expectedCode: http.StatusBadRequest, expectedMsg: "invalid payment method"},
		{name: "unauthorized", err: failure.Unauthorized("token expired"), expectedCode: http.StatusUnauthorized, expectedMsg: "token expired"},
		{name: "forbidden", err: failure.Forbidden("user account is deactivated"), expectedCode: http.StatusForbidden, expectedMsg: "user account is deactivated"},
		{name: "not found", err: failure.NotFound("booking not found"), expectedCode: http.StatusNotFound, expectedMsg: "booking not found"},
		{name: "conflict", err: failure.Conflict("checkout already in progress"), expectedCode: http.StatusConflict, expectedMsg: "checkout already in progress"},
		{name: "restricted", err: failure.ResourceRestrictedError, expectedCode: http.StatusForbidden, expectedMsg: failure.ResourceRestrictedError.Message},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedCode, failure.GetCode(tt.err))
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
		})
	}
}

func TestBadRequest_Nil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, http.StatusConflict, failure.GetCode(fmt.Errorf("checkout: %w", failure.Conflict("duplicate"))))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("db down")))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(nil))
}
