// Package localserver serves the Lambda handler over plain HTTP for local
// development. Each request is converted into the API Gateway proxy event the
// deployed function receives.
package localserver

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ProxyHandler is the Lambda handler signature served by the router.
type ProxyHandler func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// NewRouter mounts handle on POST and OPTIONS at path, plus GET /health.
func NewRouter(handle ProxyHandler, path string, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	serve := proxy(handle, log)
	router.POST(path, serve)
	router.OPTIONS(path, serve)
	return router
}

func proxy(handle ProxyHandler, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		event, err := toProxyRequest(c)
		if err != nil {
			log.Warn("failed to read request body", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "INVALID_INPUT"})
			return
		}

		resp, err := handle(c.Request.Context(), event)
		if err != nil {
			// Lambda would surface this as a bare 502.
			log.Error("handler returned error", zap.Error(err))
			c.JSON(http.StatusBadGateway, gin.H{"message": "Internal server error"})
			return
		}
		writeProxyResponse(c, resp)
	}
}

func toProxyRequest(c *gin.Context) (events.APIGatewayProxyRequest, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return events.APIGatewayProxyRequest{}, err
	}

	headers := make(map[string]string, len(c.Request.Header))
	for k, v := range c.Request.Header {
		headers[k] = strings.Join(v, ",")
	}
	query := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}

	return events.APIGatewayProxyRequest{
		Resource:              c.FullPath(),
		Path:                  c.Request.URL.Path,
		HTTPMethod:            c.Request.Method,
		Headers:               headers,
		MultiValueHeaders:     c.Request.Header,
		QueryStringParameters: query,
		Body:                  string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:  uuid.NewString(),
			Stage:      "local",
			HTTPMethod: c.Request.Method,
			Path:       c.Request.URL.Path,
			Identity:   events.APIGatewayRequestIdentity{SourceIP: c.ClientIP()},
		},
	}, nil
}

func writeProxyResponse(c *gin.Context, resp events.APIGatewayProxyResponse) {
	for k, v := range resp.Headers {
		c.Header(k, v)
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	if resp.Body == "" {
		c.Status(status)
		return
	}
	c.Data(status, resp.Headers["Content-Type"], []byte(resp.Body))
}
