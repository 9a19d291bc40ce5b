package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/eshaffer321/restcore-go/pkg/restcore"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// restTools holds the restcore client and implements all tool handlers
type restTools struct {
	client *restcore.Client
}

// RequestInput describes one API call
type RequestInput struct {
	Method          string            `json:"method,omitempty" jsonschema:"HTTP method (default: GET)"`
	Path            string            `json:"path" jsonschema:"Path relative to the API base URL, may include a query string"`
	Headers         map[string]string `json:"headers,omitempty" jsonschema:"Additional request headers"`
	Body            string            `json:"body,omitempty" jsonschema:"JSON request body (optional)"`
	KeyPaths        []string          `json:"keyPaths,omitempty" jsonschema:"Key paths locating the payload, tried in order (e.g. data/items)"`
	NoCache         bool              `json:"noCache,omitempty" jsonschema:"Bypass the response cache"`
	CacheTTLSeconds int               `json:"cacheTtlSeconds,omitempty" jsonschema:"Cache lifetime for GET responses in seconds (0 keeps until cleared)"`
}

// RequestOutput is the decoded response
type RequestOutput struct {
	SourceURL  string `json:"sourceUrl" jsonschema:"URL the payload was fetched from"`
	StatusCode int    `json:"statusCode,omitempty" jsonschema:"HTTP status code (absent for cached responses)"`
	FromCache  bool   `json:"fromCache" jsonschema:"Whether the payload came from the cache"`
	IsArray    bool   `json:"isArray" jsonschema:"Whether the payload is an array"`
	Payload    any    `json:"payload" jsonschema:"Decoded JSON payload"`
}

func (t *restTools) Request(ctx context.Context, req *mcp.CallToolRequest, input RequestInput) (*mcp.CallToolResult, RequestOutput, error) {
	svc, err := serviceFromInput(input)
	if err != nil {
		return nil, RequestOutput{}, err
	}

	result, err := restcore.Do[json.RawMessage](ctx, t.client, svc)
	if err != nil {
		e := restcore.AsError(err)
		if len(e.Data) > 0 {
			return nil, RequestOutput{}, fmt.Errorf("%w: %s", err, string(e.Data))
		}
		return nil, RequestOutput{}, err
	}

	output := RequestOutput{
		SourceURL:  result.SourceURL,
		StatusCode: result.StatusCode,
		FromCache:  result.FromCache,
		IsArray:    result.IsSequence(),
	}

	switch {
	case result.IsSequence():
		output.Payload = result.Objects
	case result.Object != nil:
		output.Payload = *result.Object
	}

	return nil, output, nil
}

func serviceFromInput(input RequestInput) (*restcore.Service, error) {
	method := restcore.MethodGet
	if input.Method != "" {
		method = restcore.Method(strings.ToUpper(input.Method))
	}
	if !method.Valid() {
		return nil, fmt.Errorf("unsupported method %q", input.Method)
	}

	svc := &restcore.Service{
		Path:        input.Path,
		Method:      method,
		KeyPaths:    input.KeyPaths,
		NoCache:     input.NoCache,
		CacheExpiry: time.Duration(input.CacheTTLSeconds) * time.Second,
	}

	// Sorted so headers have a stable order
	names := make([]string, 0, len(input.Headers))
	for name := range input.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		svc.Headers.Set(name, input.Headers[name])
	}

	if input.Body != "" {
		body, err := restcore.FromJSON([]byte(input.Body))
		if err != nil {
			return nil, fmt.Errorf("invalid body: %w", err)
		}
		svc.Body = &body
	}

	return svc, nil
}

// ClearCache tool - drops cached responses
type ClearCacheInput struct {
	// No input parameters needed
}

type ClearCacheOutput struct {
	Cleared bool `json:"cleared" jsonschema:"Whether the cache was cleared"`
}

func (t *restTools) ClearCache(ctx context.Context, req *mcp.CallToolRequest, input ClearCacheInput) (*mcp.CallToolResult, ClearCacheOutput, error) {
	if err := t.client.ClearCache(ctx); err != nil {
		return nil, ClearCacheOutput{}, fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil, ClearCacheOutput{Cleared: true}, nil
}
