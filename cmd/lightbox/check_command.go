package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lightbox/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check the listing source, directories and collaborators",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderSectionHeader("Configuration", colorize))
			configDetail := ctx.configPath
			if !ctx.configSeen {
				configDetail += " (not found; defaults in use)"
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, configDetail, colorize))
			fmt.Fprintln(out, renderStatusLine("Watch listing", statusInfo, yesNo(cfg.Source.Watch), colorize))

			fmt.Fprintln(out, renderSectionHeader("Checks", colorize))
			results := preflight.RunAll(cmd.Context(), cfg, ctx.newCollaborators(cfg))
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if !preflight.AllPassed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
