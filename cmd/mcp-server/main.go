package main

import (
	"context"
	"log"
	"os"

	"github.com/eshaffer321/restcore-go/pkg/restcore"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	// Get the API base URL and token from environment
	baseURL := os.Getenv("RESTCORE_BASE_URL")
	if baseURL == "" {
		log.Fatal("RESTCORE_BASE_URL environment variable is required")
	}

	client, err := restcore.NewClient(&restcore.ClientOptions{
		BaseURL:   baseURL,
		Token:     os.Getenv("RESTCORE_TOKEN"),
		SentryDSN: os.Getenv("SENTRY_DSN"),
	})
	if err != nil {
		log.Fatalf("failed to initialize client: %v", err)
	}
	defer client.Close()

	impl := &mcp.Implementation{
		Name:    "restcore",
		Version: "1.0.0",
	}

	server := mcp.NewServer(impl, nil)

	registerTools(server, client)

	// Run server over stdio transport
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func registerTools(server *mcp.Server, client *restcore.Client) {
	tools := &restTools{client: client}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "http_request",
		Description: "Send a request to the configured REST API and return the decoded JSON payload. Supports key paths (e.g. data/items) to extract nested payloads. GET responses are cached unless no_cache is set.",
	}, tools.Request)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "clear_cache",
		Description: "Remove every cached API response.",
	}, tools.ClearCache)
}
