package app

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"

	"chat-relay/handler"
	"chat-relay/internal/config"
	"chat-relay/internal/integrations/generator"
	"chat-relay/internal/integrations/paramstore"
	"chat-relay/internal/logger"
	"chat-relay/internal/repository"
	"chat-relay/internal/usecase"
)

// App holds the process-lifetime dependencies shared by every invocation.
type App struct {
	Config  config.Config
	Log     *zap.Logger
	Handler *handler.Handler
}

// New resolves configuration once and wires the handler. getenv is the only
// way configuration enters the process.
func New(ctx context.Context, getenv func(string) string) (*App, error) {
	// ---- AWS SDK config ----
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load AWS config: %w", err)
	}

	params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, fmt.Errorf("app: create SSM client: %w", err)
	}

	// ---- Configuration ----
	cfg, err := config.Load(ctx, getenv, params)
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.LogLevel)

	// ---- Clients ----
	gen, err := generator.NewClient(cfg.GeneratorBaseURL, generator.WithTimeout(cfg.GenerateTimeout))
	if err != nil {
		return nil, fmt.Errorf("app: create generator client: %w", err)
	}

	var recorder usecase.ExchangeRecorder
	if cfg.ExchangeTable != "" {
		exchanges, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.ExchangeTable)
		if err != nil {
			return nil, fmt.Errorf("app: create exchange repository: %w", err)
		}
		recorder = exchanges
	}

	// ---- Handler ----
	svc, err := usecase.NewRelayService(gen, recorder, log)
	if err != nil {
		return nil, fmt.Errorf("app: create relay service: %w", err)
	}
	h, err := handler.NewHandler(svc, handler.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("app: create handler: %w", err)
	}

	log.Info("chat relay configured",
		zap.String("endpoint", gen.Endpoint()),
		zap.Duration("timeout", cfg.GenerateTimeout),
		zap.Bool("exchange_log", recorder != nil),
	)
	return &App{Config: cfg, Log: log, Handler: h}, nil
}
