package main

import (
	"fmt"
	"io"

	"github.com/eshaffer321/restcore-go/internal/config"
	"github.com/spf13/cobra"
)

func newCacheCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the response cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached response",
		Long: `Remove every cached response from the configured cache backend.

Only the redis backend outlives a single restcall process, so clearing the
memory backend has no lasting effect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			if cfg.Cache.Backend != config.CacheRedis {
				fmt.Fprintf(cmd.OutOrStdout(), "cache backend %q keeps nothing between runs\n", cfg.Cache.Backend)
				return nil
			}

			store, err := newCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if closer, ok := store.(io.Closer); ok {
				defer closer.Close()
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	})

	return cmd
}
