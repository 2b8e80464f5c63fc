package validator_test

import (
	"homestay/shared/failure"
	"homestay/shared/validator"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stayRequest struct {
	HomestayID string `json:"homestay_id" validate:"required,uuid"`
	CheckIn    string `json:"check_in"    validate:"required,datetime=2006-01-02"`
	Guests     int    `json:"guests"      validate:"required,min=1,max=20"`
	Type       string `json:"booking_type" validate:"required,oneof=WHOLE ROOM"`
}

type imageUpload struct {
	Image *multipart.FileHeader `json:"image" validate:"required,mimetypes=image/png image/jpeg,maxfilesize=1"`
}

func validStay() stayRequest {
	return stayRequest{
		HomestayID: "6f1c3a5e-9a8b-4c2d-8e7f-1a2b3c4d5e6f",
		CheckIn:    "2026-11-02",
		Guests:     2,
		Type:       "WHOLE",
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(r *stayRequest)
		expectedMsg string
	}{
		{name: "valid", mutate: func(*stayRequest) {}},
		{name: "missing homestay", mutate: func(r *stayRequest) { r.HomestayID = "" }, expectedMsg: "homestay_id is required"},
		{name: "bad uuid", mutate: func(r *stayRequest) { r.HomestayID = "h1" }, expectedMsg: "homestay_id must be a valid UUID"},
		{name: "bad date", mutate: func(r *stayRequest) { r.CheckIn = "02/11/2026" }, expectedMsg: "check_in must match the format 2006-01-02"},
		{name: "too many guests", mutate: func(r *stayRequest) { r.Guests = 21 }, expectedMsg: "guests must be less than or equal to 20"},
		{name: "unknown type", mutate: func(r *stayRequest) { r.Type = "SUITE" }, expectedMsg: "booking_type must be one of WHOLE ROOM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validStay()
			tt.mutate(&req)

			err := validator.ValidateStruct(&req)
			if tt.expectedMsg == "" {
				require.NoError(t, err)

				return
			}

			assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
			assert.EqualError(t, err, tt.expectedMsg)
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("decodes and validates", func(t *testing.T) {
		var req stayRequest

		body := `{"homestay_id":"6f1c3a5e-9a8b-4c2d-8e7f-1a2b3c4d5e6f","check_in":"2026-11-02","guests":3,"booking_type":"ROOM"}`
		require.NoError(t, validator.Validate(strings.NewReader(body), &req))
		assert.Equal(t, 3, req.Guests)
	})

	t.Run("malformed body", func(t *testing.T) {
		var req stayRequest

		err := validator.Validate(strings.NewReader(`{"guests":`), &req)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
		assert.Contains(t, err.Error(), "failed to decode request body")
	})

	t.Run("decode skips validation", func(t *testing.T) {
		var req stayRequest

		require.NoError(t, validator.Decode(strings.NewReader(`{"guests":0}`), &req))
	})
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("6f1c3a5e-9a8b-4c2d-8e7f-1a2b3c4d5e6f", "uuid"))
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(validator.ValidateVar("abc", "uuid")))
}

func TestFileValidation(t *testing.T) {
	header := func(contentType string, size int64) *multipart.FileHeader {
		return &multipart.FileHeader{
			Filename: "front.png",
			Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
			Size:     size,
		}
	}

	tests := []struct {
		name        string
		file        *multipart.FileHeader
		expectedMsg string
	}{
		{name: "png within limit", file: header("image/png", 512*1024)},
		{name: "missing", expectedMsg: "image is required"},
		{name: "wrong type", file: header("application/pdf", 1024), expectedMsg: "image must be one of image/png image/jpeg"},
		{name: "too large", file: header("image/jpeg", 2*1024*1024), expectedMsg: "image must not exceed 1 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&imageUpload{Image: tt.file})
			if tt.expectedMsg == "" {
				require.NoError(t, err)

				return
			}

			assert.EqualError(t, err, tt.expectedMsg)
		})
	}
}
