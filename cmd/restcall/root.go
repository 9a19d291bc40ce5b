package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "restcall",
		Short: "Call JSON REST APIs with caching, retries and certificate pinning",
		Long: `restcall sends a request through the restcore pipeline and prints the
decoded payload.

Configuration is read from a YAML file (--config). RESTCORE_TOKEN and
RESTCORE_BASE_URL override the token and base URL from the file.

Examples:
  # Fetch a resource
  restcall call /users/1 --config restcall.yaml

  # Extract a nested array
  restcall call /search --key-path data/items --key-path results

  # Create a resource
  restcall call /users -X POST -d '{"name": "Ada"}'

  # Drop cached responses from the shared cache
  restcall cache clear --config restcall.yaml`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and responses to stderr")

	cmd.AddCommand(newCallCmd(opts))
	cmd.AddCommand(newCacheCmd(opts))

	return cmd
}
