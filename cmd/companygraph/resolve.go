package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"companygraph/internal/app"
	"companygraph/internal/companygraph"
	"companygraph/internal/companygraph/handler"
	"companygraph/internal/platform/config"
	"companygraph/internal/platform/logger"
)

var searchModes = []string{
	string(companygraph.SearchByName),
	string(companygraph.SearchByID),
	string(companygraph.SearchByResponsible),
}

func newResolveCmd() *cobra.Command {
	var searchBy string

	cmd := &cobra.Command{
		Use:   "resolve <query>",
		Short: "Resolve a company and print the connected companies as JSON",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(searchModes, searchBy) {
				return fmt.Errorf("invalid --by %q, valid options: %v", searchBy, searchModes)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			log := logger.NewWithWriter(cmd.ErrOrStderr(), os.Getenv("LOG_LEVEL"))

			a, err := app.New(cmd.Context(), cfg, log, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.Resolver.Resolve(cmd.Context(), args[0], companygraph.SearchBy(searchBy))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(handler.NewCompanyResponse(result))
		},
	}
	cmd.Flags().StringVar(&searchBy, "by", string(companygraph.SearchByName), "search mode: name, id or responsible_name")
	_ = cmd.RegisterFlagCompletionFunc("by", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return searchModes, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}
