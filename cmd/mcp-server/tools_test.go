package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/eshaffer321/restcore-go/pkg/restcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTools(t *testing.T, handler http.HandlerFunc) *restTools {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := restcore.NewClient(&restcore.ClientOptions{
		BaseURL:     server.URL,
		RetryPolicy: restcore.NoRetry(),
	})
	require.NoError(t, err)

	return &restTools{client: client}
}

func TestRequestTool_KeyPath(t *testing.T) {
	tools := newTestTools(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "go", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.Header.Get("X-Trace"))
		_, _ = w.Write([]byte(`{"data": {"items": [{"id": 1}, {"id": 2}]}}`))
	})

	_, output, err := tools.Request(context.Background(), nil, RequestInput{
		Path:     "/search?q=go",
		Headers:  map[string]string{"X-Trace": "1"},
		KeyPaths: []string{"data/items"},
	})
	require.NoError(t, err)

	assert.True(t, output.IsArray)
	assert.Equal(t, 200, output.StatusCode)

	encoded, err := json.Marshal(output.Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id": 1}, {"id": 2}]`, string(encoded))
}

func TestRequestTool_PostBody(t *testing.T) {
	tools := newTestTools(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, `{"name":"Ada"}`, string(body))
		_, _ = w.Write([]byte(`{"id": 7}`))
	})

	_, output, err := tools.Request(context.Background(), nil, RequestInput{
		Method: "post",
		Path:   "/users",
		Body:   `{"name": "Ada"}`,
	})
	require.NoError(t, err)
	assert.False(t, output.IsArray)

	encoded, err := json.Marshal(output.Payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 7}`, string(encoded))
}

func TestRequestTool_ErrorIncludesBody(t *testing.T) {
	tools := newTestTools(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "missing name"}`))
	})

	_, _, err := tools.Request(context.Background(), nil, RequestInput{Path: "/users"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing name")
	assert.True(t, restcore.IsKind(err, restcore.KindClientError))
}

func TestRequestTool_InvalidInput(t *testing.T) {
	tools := newTestTools(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, _, err := tools.Request(context.Background(), nil, RequestInput{Method: "FETCH", Path: "/x"})
	assert.Error(t, err)

	_, _, err = tools.Request(context.Background(), nil, RequestInput{Path: "/x", Body: "{"})
	assert.Error(t, err)
}

func TestClearCacheTool(t *testing.T) {
	var hits int32
	tools := newTestTools(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{"id": 1}`))
	})

	input := RequestInput{Path: "/thing"}
	_, _, err := tools.Request(context.Background(), nil, input)
	require.NoError(t, err)

	_, output, err := tools.Request(context.Background(), nil, input)
	require.NoError(t, err)
	assert.True(t, output.FromCache)

	_, cleared, err := tools.ClearCache(context.Background(), nil, ClearCacheInput{})
	require.NoError(t, err)
	assert.True(t, cleared.Cleared)

	_, output, err = tools.Request(context.Background(), nil, input)
	require.NoError(t, err)
	assert.False(t, output.FromCache)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}
