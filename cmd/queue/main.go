// Command queue is the Lambda entrypoint for the post command queue.
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/postbox/internal/config"
	"github.com/jacentio/postbox/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	logger := cfg.NewLogger(os.Stdout)

	posts, err := cfg.NewStore(context.Background())
	if err != nil {
		panic("Failed to initialize store: " + err.Error())
	}

	h := queue.NewHandler(posts, logger)
	lambda.Start(h.HandleDeleteAll)
}
