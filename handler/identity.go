package handler

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"chat-relay/internal/domain"
)

// IdentityObserver is notified with the authenticated caller, if any. It
// cannot change how the request is handled.
type IdentityObserver func(ctx context.Context, correlationID string, id domain.Identity)

// LogIdentity returns an observer that logs the caller at info level.
func LogIdentity(log *zap.Logger) IdentityObserver {
	return func(_ context.Context, correlationID string, id domain.Identity) {
		log.Info("authenticated user",
			zap.String("correlation_id", correlationID),
			zap.String("user", id.Name()),
		)
	}
}

// identityFromEvent reads Cognito user pool claims attached by an API Gateway
// authorizer. It returns the zero Identity for anonymous requests.
func identityFromEvent(event events.APIGatewayProxyRequest) domain.Identity {
	claims, ok := event.RequestContext.Authorizer["claims"].(map[string]interface{})
	if !ok {
		return domain.Identity{}
	}
	return domain.Identity{
		Email:    claimString(claims, "email"),
		Username: claimString(claims, "cognito:username"),
	}
}

func claimString(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}
