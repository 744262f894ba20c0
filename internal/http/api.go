package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"photo-deployer/internal/metrics"
)

// UploadRoute is the single endpoint issuing signed upload URLs.
const UploadRoute = "/photo-deployer"

const requestIDHeader = "X-Request-ID"

// Handler wires HTTP routes to the upload dispatcher.
type Handler struct {
	dispatcher *Dispatcher
	metrics    *metrics.UploadMetrics
	logger     logrus.FieldLogger
}

func NewHandler(dispatcher *Dispatcher, m *metrics.UploadMetrics, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		dispatcher: dispatcher,
		metrics:    m,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestLogger(h.logger))

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	upload := router.Group(UploadRoute)
	upload.Use(corsMiddleware())
	{
		upload.Any("", h.photoDeployer)
	}
}

// corsMiddleware answers preflight requests; the dispatcher adds the same headers
// to every other response itself.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}
		for k, v := range CORSHeaders() {
			c.Writer.Header().Set(k, v)
		}
		c.AbortWithStatus(http.StatusNoContent)
	}
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)

		entry := logger.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		c.Request = c.Request.WithContext(ContextWithLogger(c.Request.Context(), entry))

		c.Next()

		entry.WithFields(logrus.Fields{
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request completed")
	}
}

func (h *Handler) photoDeployer(c *gin.Context) {
	resp := h.dispatcher.Dispatch(c.Request.Context(), c.Request.Method, c.Request.Body)
	writeResponse(c, resp)
}

func writeResponse(c *gin.Context, resp Response) {
	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	c.Data(resp.StatusCode, resp.Headers["Content-Type"], []byte(resp.Body))
}
