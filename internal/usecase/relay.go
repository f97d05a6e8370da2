package usecase

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"chat-relay/internal/domain"
	"chat-relay/internal/integrations/generator"
)

const (
	previewRunes = 120
	outcomeOK    = "OK"
)

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ExchangeRecorder stores invocation metadata. It is optional.
type ExchangeRecorder interface {
	NewExchangeRecord(correlationID, user string) domain.ExchangeRecord
	RecordExchange(ctx context.Context, rec domain.ExchangeRecord) error
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type RelayService struct {
	gen      Generator
	recorder ExchangeRecorder
	log      *zap.Logger
	now      func() time.Time
}

type RelayInput struct {
	Message       string
	History       []domain.Turn
	CorrelationID string
	User          string
}

type RelayOutput struct {
	Reply   string
	History []domain.Turn
}

// NewRelayService wires the service. recorder may be nil when the audit table
// is not configured.
func NewRelayService(gen Generator, recorder ExchangeRecorder, log *zap.Logger) (*RelayService, error) {
	if gen == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RelayService{
		gen:      gen,
		recorder: recorder,
		log:      log,
		now:      time.Now,
	}, nil
}

// Relay sends one user message to the generator and returns the reply with
// the history extended by the user turn and the assistant turn. The input
// history slice is never modified.
func (s *RelayService) Relay(ctx context.Context, in RelayInput) (RelayOutput, error) {
	started := s.now()
	log := s.log.With(zap.String("correlation_id", in.CorrelationID))

	prompt := BuildPrompt(in.History, in.Message)
	log.Info("prompt built",
		zap.Int("history_turns", len(in.History)),
		zap.String("prompt_preview", preview(prompt, previewRunes)),
	)

	reply, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		relayErr := classifyGenerateError(err)
		s.record(ctx, log, in, len(prompt), 0, started, string(relayErr.Code))
		return RelayOutput{}, relayErr
	}
	log.Info("assistant reply", zap.String("reply_preview", preview(reply, previewRunes)))

	history := make([]domain.Turn, 0, len(in.History)+2)
	history = append(history, in.History...)
	history = append(history,
		domain.Turn{Role: domain.RoleUser, Content: in.Message},
		domain.Turn{Role: domain.RoleAssistant, Content: reply},
	)

	s.record(ctx, log, in, len(prompt), len(reply), started, outcomeOK)
	return RelayOutput{Reply: reply, History: history}, nil
}

// record writes the audit entry. Failures are logged and never surface to the
// caller.
func (s *RelayService) record(ctx context.Context, log *zap.Logger, in RelayInput, promptChars, replyChars int, started time.Time, outcome string) {
	if s.recorder == nil {
		return
	}
	rec := s.recorder.NewExchangeRecord(in.CorrelationID, in.User)
	rec.HistoryTurns = len(in.History)
	rec.PromptChars = promptChars
	rec.ReplyChars = replyChars
	rec.LatencyMillis = s.now().Sub(started).Milliseconds()
	rec.Outcome = outcome
	if err := s.recorder.RecordExchange(ctx, rec); err != nil {
		log.Warn("failed to record exchange", zap.String("exchange_id", rec.ExchangeID), zap.Error(err))
	}
}

func classifyGenerateError(err error) *Error {
	switch {
	case errors.Is(err, generator.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return newError(ErrorUpstreamTimeout, "generate_timeout", err)
	case errors.Is(err, generator.ErrMissingGeneratedText):
		return newError(ErrorUpstream, "generate_missing_text", err)
	}
	if _, ok := upstreamStatusCode(err); ok {
		return newError(ErrorUpstream, "generate_bad_status", err)
	}
	return newError(ErrorUpstream, "generate_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
