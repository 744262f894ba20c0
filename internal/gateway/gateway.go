// Package gateway adapts the upload dispatcher to API Gateway proxy events so the
// same logic can run as an AWS Lambda function.
package gateway

import (
	"context"
	"encoding/base64"
	"io"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"

	apphttp "photo-deployer/internal/http"
)

// Handler is the function signature expected by lambda.Start.
type Handler func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// NewHandler returns a proxy handler. It never returns an error, so API Gateway
// always receives the shaped response with CORS headers.
func NewHandler(dispatcher *apphttp.Dispatcher, logger logrus.FieldLogger) Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		fields := logrus.Fields{
			"method": event.HTTPMethod,
			"path":   event.Path,
		}
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			fields["request_id"] = lc.AwsRequestID
		} else if event.RequestContext.RequestID != "" {
			fields["request_id"] = event.RequestContext.RequestID
		}
		ctx = apphttp.ContextWithLogger(ctx, logger.WithFields(fields))

		resp := dispatcher.Dispatch(ctx, event.HTTPMethod, eventBody(event))
		return events.APIGatewayProxyResponse{
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
			Body:       resp.Body,
		}, nil
	}
}

func eventBody(event events.APIGatewayProxyRequest) io.Reader {
	body := strings.NewReader(event.Body)
	if event.IsBase64Encoded {
		return base64.NewDecoder(base64.StdEncoding, body)
	}
	return body
}
