package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"photo-deployer/internal/domain"
	apphttp "photo-deployer/internal/http"
)

type fixedUploads struct {
	got domain.UploadRequest
}

func (f *fixedUploads) IssueUpload(_ context.Context, req domain.UploadRequest) (*domain.SignedUploadDescriptor, error) {
	f.got = req
	public := "https://photos.s3.ca-central-1.amazonaws.com/" + req.ObjectName
	return &domain.SignedUploadDescriptor{SignedURL: public + "?X-Amz-Expires=3600", PublicURL: public}, nil
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name         string
		event        events.APIGatewayProxyRequest
		expectStatus int
		expectKey    string
	}{
		{
			name: "post",
			event: events.APIGatewayProxyRequest{
				HTTPMethod: http.MethodPost,
				Path:       "/photo-deployer",
				Body:       `{"fileName":"cat.png","fileType":"image/png"}`,
			},
			expectStatus: http.StatusCreated,
			expectKey:    "cat.png",
		},
		{
			name: "base64 body",
			event: events.APIGatewayProxyRequest{
				HTTPMethod:      http.MethodPost,
				Body:            base64.StdEncoding.EncodeToString([]byte(`{"fileName":"dog.jpg","fileType":"image/jpeg"}`)),
				IsBase64Encoded: true,
			},
			expectStatus: http.StatusCreated,
			expectKey:    "dog.jpg",
		},
		{
			name: "invalid base64 body",
			event: events.APIGatewayProxyRequest{
				HTTPMethod:      http.MethodPost,
				Body:            "%%%not-base64",
				IsBase64Encoded: true,
			},
			expectStatus: http.StatusBadRequest,
		},
		{
			name: "missing body",
			event: events.APIGatewayProxyRequest{
				HTTPMethod: http.MethodPost,
			},
			expectStatus: http.StatusBadRequest,
		},
		{
			name: "unsupported method",
			event: events.APIGatewayProxyRequest{
				HTTPMethod: http.MethodPatch,
			},
			expectStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := logtest.NewNullLogger()
			uploads := &fixedUploads{}
			handler := NewHandler(apphttp.NewDispatcher(uploads, nil, logger), logger)

			resp, err := handler(context.Background(), tt.event)
			if err != nil {
				t.Fatalf("handler must not return errors, got %v", err)
			}
			if resp.StatusCode != tt.expectStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.expectStatus, resp.StatusCode, resp.Body)
			}
			if resp.Headers["Access-Control-Allow-Origin"] != "*" {
				t.Errorf("expected CORS headers, got %v", resp.Headers)
			}
			if tt.expectKey == "" {
				return
			}

			if uploads.got.ObjectName != tt.expectKey {
				t.Errorf("expected key %s, got %s", tt.expectKey, uploads.got.ObjectName)
			}
			var desc domain.SignedUploadDescriptor
			if err := json.Unmarshal([]byte(resp.Body), &desc); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if !strings.HasSuffix(desc.PublicURL, "/"+tt.expectKey) {
				t.Errorf("unexpected public url %s", desc.PublicURL)
			}
		})
	}
}

func TestHandlerLogsLambdaRequestID(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	handler := NewHandler(apphttp.NewDispatcher(&fixedUploads{}, nil, logger), logger)

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "abc-123"})
	_, err := handler(ctx, events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       `{"fileName":"cat.png","fileType":"image/png"}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Data["request_id"] != "abc-123" {
		t.Errorf("expected request id field, got %v", entry.Data)
	}
}
