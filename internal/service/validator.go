package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"photo-deployer/internal/domain"
)

var (
	// ErrMalformedInput is returned when the request body is not a JSON object.
	ErrMalformedInput = errors.New("malformed request body")

	validate     *validator.Validate
	validateOnce sync.Once
)

// MissingFieldError reports a required request field that was absent or empty.
// Field carries the wire name the client sent (fileName, fileType).
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("value for %s expected", e.Field)
}

// engine reports struct fields by their json name so errors match the wire format.
func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateUploadRequest parses a raw request body and checks its required fields.
// An empty body is treated as an empty object. Field names match exactly.
func ValidateUploadRequest(body []byte) (domain.UploadRequest, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !utf8.Valid(body) {
		return domain.UploadRequest{}, fmt.Errorf("%w: invalid utf-8", ErrMalformedInput)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return domain.UploadRequest{}, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if fields == nil {
		return domain.UploadRequest{}, fmt.Errorf("%w: body is null", ErrMalformedInput)
	}

	var (
		req domain.UploadRequest
		err error
	)
	if req.ObjectName, err = stringField(fields, "fileName"); err != nil {
		return domain.UploadRequest{}, err
	}
	if req.ContentType, err = stringField(fields, "fileType"); err != nil {
		return domain.UploadRequest{}, err
	}

	if err := engine().Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.UploadRequest{}, &MissingFieldError{Field: verrs[0].Field()}
		}
		return domain.UploadRequest{}, fmt.Errorf("validate upload request: %w", err)
	}

	return req, nil
}

// stringField reads a string member. A value of any other type counts as missing.
func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", &MissingFieldError{Field: name}
	}
	return v, nil
}
