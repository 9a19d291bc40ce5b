package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/eshaffer321/restcore-go/pkg/restcore"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type callOptions struct {
	method   string
	baseURL  string
	keyPaths []string
	headers  []string
	data     string
	file     string
	fields   []string
	noCache  bool
	ttl      time.Duration
}

func newCallCmd(root *rootOptions) *cobra.Command {
	opts := &callOptions{}

	cmd := &cobra.Command{
		Use:   "call <path>",
		Short: "Send a request and print the decoded payload",
		Long: `Send a request to <path> under the configured base URL and print the
decoded payload as indented JSON.

Key paths are tried in order; the first that resolves is printed. With
--file the request is sent as a multipart upload. Uploads do not carry the
configured default headers or token, so pass any the server needs with
--header.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "X", "GET", "HTTP method")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "override the configured base URL")
	cmd.Flags().StringArrayVarP(&opts.keyPaths, "key-path", "k", nil, "key path locating the payload, e.g. data/items (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, `request header "Name: value" (repeatable)`)
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "JSON request body")
	cmd.Flags().StringVar(&opts.file, "file", "", "upload a file as multipart/form-data")
	cmd.Flags().StringArrayVarP(&opts.fields, "field", "F", nil, "multipart form field name=value (repeatable)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the response cache")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 0, "cache lifetime for GET responses (0 keeps until cleared)")

	return cmd
}

func runCall(cmd *cobra.Command, root *rootOptions, opts *callOptions, path string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	svc, err := buildService(opts, path)
	if err != nil {
		return err
	}

	client, err := newClient(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := restcore.Do[json.RawMessage](ctx, client, svc)
	if err != nil {
		return describeError(cmd.ErrOrStderr(), err)
	}

	if root.verbose {
		source := "network"
		if result.FromCache {
			source = "cache"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s (%s)\n", svc.Method, result.SourceURL, source)
	}

	return printResult(cmd.OutOrStdout(), result)
}

func buildService(opts *callOptions, path string) (*restcore.Service, error) {
	svc := &restcore.Service{
		BaseURL:     opts.baseURL,
		Path:        path,
		Method:      restcore.Method(strings.ToUpper(opts.method)),
		KeyPaths:    opts.keyPaths,
		NoCache:     opts.noCache,
		CacheExpiry: opts.ttl,
	}

	for _, h := range opts.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, errors.Errorf("invalid header %q, expected \"Name: value\"", h)
		}
		svc.Headers.Set(strings.TrimSpace(name), strings.TrimSpace(value))
	}

	if opts.data != "" && opts.file != "" {
		return nil, errors.New("--data and --file cannot be combined")
	}

	if opts.data != "" {
		value, err := restcore.FromJSON([]byte(opts.data))
		if err != nil {
			return nil, errors.Wrap(err, "invalid --data")
		}
		svc.Body = &value
	}

	if opts.file != "" {
		upload, err := readUpload(opts.file, opts.fields)
		if err != nil {
			return nil, err
		}
		svc.Multipart = upload
	} else if len(opts.fields) > 0 {
		return nil, errors.New("--field requires --file")
	}

	return svc, nil
}

func printResult(w io.Writer, result *restcore.Result[json.RawMessage]) error {
	var payload interface{}
	switch {
	case result.IsSequence():
		payload = result.Objects
	case result.Object != nil:
		payload = result.Object
	default:
		fmt.Fprintln(w, "null")
		return nil
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to format response")
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// describeError prints the response body of a failed call and returns a
// short error for the exit status
func describeError(w io.Writer, err error) error {
	e := restcore.AsError(err)
	if len(e.Data) > 0 {
		fmt.Fprintln(w, string(e.Data))
	}
	return err
}
