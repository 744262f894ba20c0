package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"photo-deployer/internal/metrics"
	"photo-deployer/internal/service"
)

// MaxBodyBytes bounds the request body read by the dispatcher.
const MaxBodyBytes = 1 << 20

// Dispatcher runs one upload request from method and body through validation and
// issuance to a shaped response. It keeps no per-request state and is safe for
// concurrent use.
type Dispatcher struct {
	uploads service.UploadService
	metrics *metrics.UploadMetrics
	logger  logrus.FieldLogger
}

func NewDispatcher(uploads service.UploadService, m *metrics.UploadMetrics, logger logrus.FieldLogger) *Dispatcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Dispatcher{
		uploads: uploads,
		metrics: m,
		logger:  logger,
	}
}

// Dispatch never panics and never returns an error: every failure becomes a response.
func (d *Dispatcher) Dispatch(ctx context.Context, method string, body io.Reader) Response {
	outcome := d.handle(ctx, method, body)
	d.metrics.ObserveOutcome(string(outcome.Kind))
	return Shape(outcome)
}

func (d *Dispatcher) handle(ctx context.Context, method string, body io.Reader) (outcome Outcome) {
	logger := loggerFrom(ctx, d.logger)

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", fmt.Sprint(r)).Error("upload request panicked")
			outcome = Outcome{Kind: OutcomeInternalFailure}
		}
	}()

	if method != http.MethodPost {
		logger.WithField("method", method).Debug("method not allowed")
		return Outcome{Kind: OutcomeMethodNotAllowed}
	}

	raw, err := readBody(body)
	if err != nil {
		return d.failure(logger, err)
	}

	req, err := service.ValidateUploadRequest(raw)
	if err != nil {
		return d.failure(logger, err)
	}

	start := time.Now()
	desc, err := d.uploads.IssueUpload(ctx, req)
	d.metrics.ObserveSigning(time.Since(start), err)
	if err != nil {
		return d.failure(logger, err)
	}

	logger.WithFields(logrus.Fields{
		"object_key":   req.ObjectName,
		"content_type": req.ContentType,
	}).Info("issued signed upload url")

	return Outcome{Kind: OutcomeSuccess, Descriptor: desc}
}

func (d *Dispatcher) failure(logger logrus.FieldLogger, err error) Outcome {
	var missing *service.MissingFieldError
	switch {
	case errors.As(err, &missing):
		logger.WithField("field", missing.Field).Warn("missing upload field")
		return Outcome{Kind: OutcomeValidationFailure, Field: missing.Field}
	case errors.Is(err, service.ErrMalformedInput):
		logger.WithError(err).Warn("malformed upload request")
		return Outcome{Kind: OutcomeMalformedInput}
	default:
		logger.WithError(err).Error("issue signed upload url")
		return Outcome{Kind: OutcomeInternalFailure}
	}
}

func readBody(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	raw, err := io.ReadAll(io.LimitReader(body, MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", service.ErrMalformedInput, err)
	}
	if len(raw) > MaxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", service.ErrMalformedInput, MaxBodyBytes)
	}
	return raw, nil
}
