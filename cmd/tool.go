package main

import (
	"fmt"

	"github.com/okian/vitrine/internal/adapters/repository"
	"github.com/okian/vitrine/internal/domain/lookup"
	"github.com/spf13/cobra"
)

// stringArgs are the tool arguments exposed as flags.
var stringArgs = []string{"technology", "client", "sector", "category", "requirements", "query"}

func newToolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool [name]",
		Short: "Run a lookup tool against the portfolio data",
		Long:  "Run one of the assistant's lookup tools and print its text output. Without a name, list the tools.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTool,
	}
	for _, name := range stringArgs {
		cmd.Flags().String(name, "", name+" argument")
	}
	cmd.Flags().Int("limit", 0, "limit argument")
	return cmd
}

func runTool(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	cfg, log, err := setup(ctx)
	if err != nil {
		return err
	}
	p, err := repository.NewYAMLStore(cfg.DataPath, repository.WithLogger(log.Named("repository"))).Load(ctx)
	if err != nil {
		return err
	}
	reg := lookup.NewRegistry(p, lookup.WithRegistryLogger(log.Named("tools")))
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		for _, t := range reg.Tools() {
			fmt.Fprintf(out, "%s\n    %s\n", t.Signature(), t.Description)
		}
		return nil
	}

	toolArgs := lookup.Args{}
	for _, name := range stringArgs {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetString(name)
			toolArgs[name] = v
		}
	}
	if cmd.Flags().Changed("limit") {
		v, _ := cmd.Flags().GetInt("limit")
		toolArgs["limit"] = v
	}

	text, err := reg.Call(lookup.WithCaller(ctx, "cli"), args[0], toolArgs)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)
	return nil
}
