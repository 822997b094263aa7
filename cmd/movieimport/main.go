package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"moviecatalog/movie"
	"moviecatalog/pkg/config"
	"moviecatalog/pkg/logger"
	"moviecatalog/store"
)

var errImportIncomplete = errors.New("some movies were not imported")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "movieimport",
		Short:         "Bulk load movies into the catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCmd(), newCheckCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "run <file.json>",
		Short: "Import movies from a JSON file into the configured store",
		Long: "Reads either a JSON array of movies or an object with a \"movies\" array. " +
			"Items are imported in order and each gets its own result line.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movies, err := readBatchFile(args[0])
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			return runImport(cmd.Context(), cmd.OutOrStdout(), cfg, log, movies, strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any movie fails to import")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.json>",
		Short: "Validate a batch file without touching the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			movies, err := readBatchFile(args[0])
			if err != nil {
				return err
			}

			invalid := 0
			for i, m := range movies {
				if err := m.Validate(); err != nil {
					invalid++
					fmt.Fprintf(cmd.OutOrStdout(), "#%d %s: %v\n", i, m.IMDbID, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d movies, %d invalid\n", len(movies), invalid)
			if invalid > 0 {
				return fmt.Errorf("%d invalid movies", invalid)
			}
			return nil
		},
	}
}

func runImport(ctx context.Context, out io.Writer, cfg *config.Config, log *zap.Logger, movies []movie.Movie, strict bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	repo, closeStore, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("close movie store", zap.Error(err))
		}
	}()

	results := movie.NewUsecase(repo).BatchImport(ctx, movies)

	enc := json.NewEncoder(out)
	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}

	log.Info("batch import finished",
		zap.String("driver", cfg.DB.Driver),
		zap.Int("total", len(results)),
		zap.Int("imported", len(results)-failed),
		zap.Int("failed", failed),
	)

	if strict && failed > 0 {
		return errImportIncomplete
	}
	return nil
}

func readBatchFile(path string) ([]movie.Movie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return parseBatch(data)
}

// parseBatch accepts `[...]` or `{"movies": [...]}`.
func parseBatch(data []byte) ([]movie.Movie, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("batch file is empty")
	}

	var movies []movie.Movie
	if data[0] == '[' {
		if err := json.Unmarshal(data, &movies); err != nil {
			return nil, fmt.Errorf("decode batch: %w", err)
		}
		return movies, nil
	}

	var wrapped struct {
		Movies []movie.Movie `json:"movies"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	if wrapped.Movies == nil {
		return nil, errors.New(`batch object has no "movies" array`)
	}
	return wrapped.Movies, nil
}
