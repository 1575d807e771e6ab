package main

import (
	"fmt"

	"github.com/okian/vitrine/internal/adapters/repository"
	"github.com/okian/vitrine/internal/domain/model"
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the portfolio data file",
		Long:  "Load and validate the configured portfolio file. Exits non-zero when the file is missing, malformed or invalid.",
		Args:  cobra.NoArgs,
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}
	p, err := repository.NewYAMLStore(cfg.DataPath, repository.WithLogger(log.Named("repository"))).Load(ctx)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validation passed: %s\n", cfg.DataPath)
	for _, c := range model.Categories {
		fmt.Fprintf(out, "  %-15s %d\n", c, p.Count(c))
	}
	return nil
}
