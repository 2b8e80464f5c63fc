package validator

import (
	"encoding/json"
	"fmt"
	"homestay/shared/constant"
	"homestay/shared/failure"
	"io"
	"mime/multipart"
	"reflect"
	"slices"
	"strconv"
	"strings"

	val "github.com/go-playground/validator/v10"
)

const bytesPerMB = 1024 * 1024

var validate *val.Validate

// uploadedFile unwraps the multipart header a field holds, by value or by pointer.
func uploadedFile(field val.FieldLevel) (multipart.FileHeader, bool) {
	switch file := field.Field().Interface().(type) {
	case multipart.FileHeader:
		return file, true
	case *multipart.FileHeader:
		if file != nil {
			return *file, true
		}
	}

	return multipart.FileHeader{}, false
}

func registerMimetypeValidation(field val.FieldLevel) bool {
	file, ok := uploadedFile(field)
	if !ok {
		return false
	}

	allowedTypes := strings.Split(field.Param(), " ")

	return slices.Contains(allowedTypes, file.Header.Get(constant.RequestHeaderContentType))
}

func registerFileSizeValidation(field val.FieldLevel) bool {
	file, ok := uploadedFile(field)
	if !ok {
		return false
	}

	maxSizeMB, err := strconv.ParseFloat(field.Param(), 64)
	if err != nil {
		return false
	}

	return float64(file.Size) <= maxSizeMB*bytesPerMB
}

// jsonFieldName reports fields by their JSON name so messages match the request body.
func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	return name
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	if err := validate.RegisterValidation("mimetypes", registerMimetypeValidation); err != nil {
		panic(err)
	}

	if err := validate.RegisterValidation("maxfilesize", registerFileSizeValidation); err != nil {
		panic(err)
	}
}

// Validate reads from the given io.Reader into the given struct, and then performs validation
// on the struct using the validator package. If the struct is invalid according to the
// validation rules, an error is returned. Otherwise, nil is returned.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	if err := Decode(r, data); err != nil {
		return err
	}

	return ValidateStruct(data)
}

// Decode reads JSON into data without validating it, for requests that are completed from the path first.
func Decode[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	err := validate.Var(field, tag)

	if err != nil {
		msg := message(err)

		return failure.BadRequestFromString(msg) //nolint:wrapcheck
	}

	return nil
}
