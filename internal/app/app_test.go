package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNew_WiresHandlerFromEnv(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	env := map[string]string{
		"FASTAPI_URL":              "http://generator.local/",
		"GENERATE_TIMEOUT_SECONDS": "15",
		"LOG_LEVEL":                "error",
	}

	a, err := New(context.Background(), func(k string) string { return env[k] })
	require.NoError(t, err)
	require.NotNil(t, a.Handler)
	require.NotNil(t, a.Log)
	require.Equal(t, "http://generator.local", a.Config.GeneratorBaseURL)
	require.Equal(t, 15*time.Second, a.Config.GenerateTimeout)
	require.Empty(t, a.Config.ExchangeTable)
}

func TestNew_WithExchangeTable(t *testing.T) {
	t.Setenv("AWS_REGION", "us-east-1")
	env := map[string]string{
		"FASTAPI_URL":    "http://generator.local",
		"EXCHANGE_TABLE": "chat-relay-exchanges",
		"LOG_LEVEL":      "error",
	}

	a, err := New(context.Background(), func(k string) string { return env[k] })
	require.NoError(t, err)
	require.Equal(t, "chat-relay-exchanges", a.Config.ExchangeTable)
}
