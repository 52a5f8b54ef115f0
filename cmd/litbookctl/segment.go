package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/litbook/litbook-server/internal/cache"
	"github.com/litbook/litbook-server/internal/llm"
	"github.com/litbook/litbook-server/internal/ratelimit"
	"github.com/litbook/litbook-server/internal/segment"
)

func newSegmentCmd(flags *globalFlags) *cobra.Command {
	var (
		local    bool
		useCache bool
		html     bool
	)

	cmd := &cobra.Command{
		Use:   "segment [file]",
		Short: "Split a text into verses",
		Long: `Reads raw chapter text from a file (or stdin when the file is "-" or
omitted) and prints the verses the server would store, as JSON.`,
		Example: `  # Segment with the configured provider
  litbookctl segment chapter.txt

  # Segment locally only
  litbookctl segment --local < chapter.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load()
			if err != nil {
				return err
			}

			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			if html {
				if raw, err = segment.FromHTML(raw); err != nil {
					return err
				}
			}

			opts := segment.Options{
				Timeout: cfg.Segmenter.Timeout,
				Logger:  log.Logger,
			}
			if !local && cfg.Segmenter.Enabled() {
				provider, err := llm.New(cmd.Context(), llm.Config{
					Provider: cfg.Segmenter.Provider,
					Model:    cfg.Segmenter.Model,
					BaseURL:  cfg.Segmenter.BaseURL,
					APIKey:   cfg.Segmenter.APIKey,
					Timeout:  cfg.Segmenter.Timeout,
				})
				if err != nil {
					return err
				}
				if c, ok := provider.(io.Closer); ok {
					defer c.Close()
				}

				limiter := ratelimit.New(cfg.Segmenter.RatePerSec, 1)
				defer limiter.Stop()

				opts.Splitter = segment.NewLLMSplitter(provider, cfg.Segmenter.Model)
				opts.Limiter = limiter
			}
			if useCache {
				c, err := cache.Open(cfg.Cache.Dir, log.Logger)
				if err != nil {
					return err
				}
				defer c.Close()
				opts.Cache = c
				opts.CacheTTL = cfg.Segmenter.CacheTTL
			}

			result := segment.New(opts).Segment(cmd.Context(), raw)
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().BoolVar(&local, "local", false, "Skip the remote provider and use line splitting")
	cmd.Flags().BoolVar(&useCache, "cache", false, "Read and write the segmentation cache")
	cmd.Flags().BoolVar(&html, "html", false, "Treat the input as HTML and convert it to Markdown first")

	return cmd
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(b), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

