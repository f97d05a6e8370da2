package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"chat-relay/internal/domain"
	"chat-relay/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
	"Access-Control-Allow-Methods": "OPTIONS,POST",
}

var validate = validator.New()

type Relayer interface {
	Relay(ctx context.Context, in usecase.RelayInput) (usecase.RelayOutput, error)
}

// relayRequest uses pointers so that a missing key is distinguishable from
// an empty string.
type relayRequest struct {
	Message             *string       `json:"message" validate:"required"`
	ConversationHistory []turnRequest `json:"conversationHistory" validate:"dive"`
}

type turnRequest struct {
	Role    *string `json:"role" validate:"required"`
	Content *string `json:"content" validate:"required"`
}

type relayResponse struct {
	Success             bool          `json:"success"`
	Response            string        `json:"response"`
	ConversationHistory []domain.Turn `json:"conversationHistory"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Reason  string `json:"reason,omitempty"`
}

type Handler struct {
	uc       Relayer
	log      *zap.Logger
	observer IdentityObserver
}

type Option func(*Handler)

func WithLogger(log *zap.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// WithIdentityObserver replaces the default identity logging.
func WithIdentityObserver(o IdentityObserver) Option {
	return func(h *Handler) {
		h.observer = o
	}
}

func NewHandler(uc Relayer, opts ...Option) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: relayer must not be nil")
	}
	h := &Handler{uc: uc, log: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	if h.observer == nil {
		h.observer = LogIdentity(h.log)
	}
	return h, nil
}

// Handle serves one API Gateway proxy event. Failures are rendered as JSON
// error responses, so the returned error is always nil.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := correlationIDFrom(event.Headers)
	log := h.log.With(zap.String("correlation_id", correlationID))
	log.Info("received event",
		zap.String("method", event.HTTPMethod),
		zap.String("path", event.Path),
		zap.String("request_id", event.RequestContext.RequestID),
	)
	log.Debug("event body", zap.String("body", event.Body))

	if event.HTTPMethod == http.MethodOptions {
		return respond(http.StatusNoContent, correlationID, ""), nil
	}

	id := identityFromEvent(event)
	if !id.IsZero() {
		h.observer(ctx, correlationID, id)
	}

	in, err := decodeRequest(event)
	if err != nil {
		return h.fail(log, correlationID, err), nil
	}
	in.CorrelationID = correlationID
	in.User = id.Name()

	out, err := h.uc.Relay(ctx, in)
	if err != nil {
		return h.fail(log, correlationID, err), nil
	}

	return respondJSON(http.StatusOK, correlationID, relayResponse{
		Success:             true,
		Response:            out.Reply,
		ConversationHistory: out.History,
	}), nil
}

func decodeRequest(event events.APIGatewayProxyRequest) (usecase.RelayInput, error) {
	body := event.Body
	if event.IsBase64Encoded {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return usecase.RelayInput{}, usecase.NewInvalidInputError("invalid_base64_body", err)
		}
		body = string(raw)
	}

	var req relayRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return usecase.RelayInput{}, usecase.NewInvalidInputError("invalid_json", err)
	}
	if err := validate.Struct(req); err != nil {
		return usecase.RelayInput{}, usecase.NewInvalidInputError(validationReason(err), err)
	}

	history := make([]domain.Turn, 0, len(req.ConversationHistory))
	for _, t := range req.ConversationHistory {
		history = append(history, domain.Turn{Role: *t.Role, Content: *t.Content})
	}
	return usecase.RelayInput{Message: *req.Message, History: history}, nil
}

func validationReason(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].StructNamespace() == "relayRequest.Message" {
		return "missing_message"
	}
	return "invalid_history"
}

func (h *Handler) fail(log *zap.Logger, correlationID string, err error) events.APIGatewayProxyResponse {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		ucErr = &usecase.Error{Code: usecase.ErrorInternal, Reason: "unexpected_error", Err: err}
	}
	log.Error("relay failed",
		zap.String("code", string(ucErr.Code)),
		zap.String("reason", ucErr.Reason),
		zap.Error(err),
	)
	return respondJSON(statusFor(ucErr.Code), correlationID, errorResponse{
		Success: false,
		Error:   string(ucErr.Code),
		Reason:  ucErr.Reason,
	})
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorUpstreamTimeout:
		return http.StatusGatewayTimeout
	case usecase.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(status int, correlationID string, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		return respond(http.StatusInternalServerError, correlationID, `{"success":false,"error":"INTERNAL_ERROR"}`)
	}
	return respond(status, correlationID, string(body))
}

func respond(status int, correlationID, body string) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(corsHeaders)+2)
	for k, v := range corsHeaders {
		headers[k] = v
	}
	headers[correlationHeader] = correlationID
	if body != "" {
		headers["Content-Type"] = "application/json"
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       body,
	}
}

func correlationIDFrom(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return newCorrelationID()
}

var newCorrelationID = func() string {
	return uuid.NewString()
}
