package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"speakerscribe/internal/deps"
	"speakerscribe/internal/preflight"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Check external programs, sidecars, and directories a run needs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := strings.TrimSpace(outputDir)
			if dir == "" {
				dir = cfg.Output.Dir
			}

			statuses := deps.Check(cfg)
			checks := preflight.RunAll(cmd.Context(), cfg, dir)
			failed := preflight.Failed(checks)

			if asJSON {
				if err := writeJSON(cmd, map[string]any{
					"dependencies": statuses,
					"checks":       checks,
				}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				rows := make([][]string, 0, len(statuses))
				for _, s := range statuses {
					location := s.Path
					if !s.Available {
						location = s.Detail
					}
					rows = append(rows, []string{s.Name, s.Command, yesNo(s.Available), yesNo(!s.Optional), location})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Dependency", "Command", "Available", "Required", "Location"},
					rows,
					nil,
				))

				checkRows := make([][]string, 0, len(checks))
				for _, check := range checks {
					checkRows = append(checkRows, []string{check.Name, passFail(check.Passed), check.Detail})
				}
				if len(checkRows) > 0 {
					fmt.Fprintln(out, renderTable([]string{"Check", "Result", "Detail"}, checkRows, nil))
				}
			}

			if len(failed) > 0 {
				names := make([]string, 0, len(failed))
				for _, f := range failed {
					names = append(names, f.Name)
				}
				return errors.New("not ready: " + strings.Join(names, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory to check (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func passFail(passed bool) string {
	if passed {
		return "ok"
	}
	return "FAIL"
}
