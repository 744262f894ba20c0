package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"photo-deployer/internal/domain"
)

// OutcomeKind tags how a single upload request ended.
type OutcomeKind string

const (
	OutcomeSuccess           OutcomeKind = "success"
	OutcomeValidationFailure OutcomeKind = "validation_failure"
	OutcomeMalformedInput    OutcomeKind = "malformed_input"
	OutcomeInternalFailure   OutcomeKind = "internal_failure"
	OutcomeMethodNotAllowed  OutcomeKind = "method_not_allowed"
)

// Outcome carries exactly what the response shaper needs and nothing more.
type Outcome struct {
	Kind       OutcomeKind
	Descriptor *domain.SignedUploadDescriptor
	Field      string // missing field, set for OutcomeValidationFailure
}

// Response is a transport-neutral reply: the gin handler and the API Gateway
// adapter both write it out verbatim.
type Response struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

const (
	malformedMessage = "request body must be a JSON object"
	internalMessage  = "Internal Server Error"
	methodMessage    = "Method Not Allowed"
)

// CORSHeaders are attached to every response, error paths included, so browsers can
// read failures instead of blocking them.
func CORSHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "*",
		"Access-Control-Allow-Headers": "*",
	}
}

// Shape maps an outcome to its status code, JSON body and headers.
func Shape(o Outcome) Response {
	headers := CORSHeaders()
	headers["Content-Type"] = "application/json"

	switch o.Kind {
	case OutcomeSuccess:
		if o.Descriptor == nil {
			break
		}
		return Response{StatusCode: http.StatusCreated, Body: encode(o.Descriptor), Headers: headers}
	case OutcomeValidationFailure:
		return Response{
			StatusCode: http.StatusBadRequest,
			Body:       errorBody("value for " + o.Field + " expected"),
			Headers:    headers,
		}
	case OutcomeMalformedInput:
		return Response{StatusCode: http.StatusBadRequest, Body: errorBody(malformedMessage), Headers: headers}
	case OutcomeMethodNotAllowed:
		headers["Allow"] = http.MethodPost
		return Response{StatusCode: http.StatusMethodNotAllowed, Body: errorBody(methodMessage), Headers: headers}
	}

	return Response{StatusCode: http.StatusInternalServerError, Body: errorBody(internalMessage), Headers: headers}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorBody(msg string) string {
	return encode(errorResponse{Error: msg})
}

func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return `{"error":"` + internalMessage + `"}`
	}
	return string(b)
}

type loggerKey struct{}

// ContextWithLogger attaches a request-scoped logger.
func ContextWithLogger(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func loggerFrom(ctx context.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if l, ok := ctx.Value(loggerKey{}).(logrus.FieldLogger); ok && l != nil {
		return l
	}
	return fallback
}
