package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"chat-relay/internal/app"
)

func main() {
	a, err := app.New(context.Background(), os.Getenv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start chat relay: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = a.Log.Sync() }()

	lambda.Start(a.Handler.Handle)
}
