package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litbook/litbook-server/internal/search"
	"github.com/litbook/litbook-server/internal/service"
	"github.com/litbook/litbook-server/internal/store/sqlite"
)

func newReindexCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the search index from the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load()
			if err != nil {
				return err
			}

			st, err := sqlite.Open(cfg.Database.Path, log.Logger)
			if err != nil {
				return err
			}
			defer st.Close()

			index, err := search.Open(search.Options{Dir: cfg.Search.IndexPath, Logger: log.Logger})
			if err != nil {
				return err
			}
			defer index.Close()

			count, err := service.NewSearchService(st, index, log.Logger).Reindex(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d books\n", count)
			return nil
		},
	}
}
