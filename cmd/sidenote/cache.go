package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nao1215/sidenote/internal/cache"
	"github.com/nao1215/sidenote/internal/config"
)

// defaultPruneAge is the default --older-than of cache prune.
const defaultPruneAge = 30 * 24 * time.Hour

// NewCacheCmd creates the cache command and its subcommands.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clean the render cache",
		Long: `The render cache stores rendered HTML keyed by the source text and the
options it was rendered with, so unchanged documents are not rendered again.

Examples:
  # Show cache size
  sidenote cache stats

  # Remove entries older than a week
  sidenote cache prune --older-than 168h

  # Remove everything
  sidenote cache clear`,
	}

	cmd.PersistentFlags().String("cache-dir", config.XDGCacheDir(),
		"Directory of the render cache")

	cmd.AddCommand(newCacheStatsCmd())
	cmd.AddCommand(newCacheClearCmd())
	cmd.AddCommand(newCachePruneCmd())

	return cmd
}

// openExistingCache opens the cache without creating it. ok is false when
// there is no cache yet, which is reported to the user.
func openExistingCache(cmd *cobra.Command) (db *cache.DB, ok bool, err error) {
	dir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return nil, false, err
	}
	db, err = cache.Open(dir, cache.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, cache.ErrNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "No render cache in %s\n", dir)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return db, true, nil
}

func newCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the number and size of cached renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, ok, err := openExistingCache(cmd)
			if err != nil || !ok {
				return err
			}
			defer db.Close()

			s, err := db.Stats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Cache:   %s\n", db.Path())
			fmt.Fprintf(out, "Entries: %d\n", s.Entries)
			fmt.Fprintf(out, "HTML:    %s\n", humanize.Bytes(uint64(s.Bytes))) //nolint:gosec // sizes are never negative
			if s.Entries > 0 {
				fmt.Fprintf(out, "Oldest:  %s\n", humanize.Time(s.Oldest))
				fmt.Fprintf(out, "Newest:  %s\n", humanize.Time(s.Newest))
			}
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached render",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, ok, err := openExistingCache(cmd)
			if err != nil || !ok {
				return err
			}
			defer db.Close()

			n, err := db.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s cached render(s)\n", humanize.Comma(n))
			return nil
		},
	}
}

func newCachePruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove cached renders older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			age, err := cmd.Flags().GetDuration("older-than")
			if err != nil {
				return err
			}
			if age <= 0 {
				return errors.New("--older-than must be positive")
			}

			db, ok, err := openExistingCache(cmd)
			if err != nil || !ok {
				return err
			}
			defer db.Close()

			n, err := db.Prune(cmd.Context(), age)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s cached render(s) older than %s\n", humanize.Comma(n), age)
			return nil
		},
	}
	cmd.Flags().Duration("older-than", defaultPruneAge,
		"Remove entries created longer ago than this")
	return cmd
}
