package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"journalimport/internal/preflight"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"

	checkLabelWidth = 20
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check paths, ruleset and catalogue before importing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			registry, err := ctx.registry()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintln(out, paint(ansiBlue, "== Preflight ==", colorize))

			results := preflight.RunAll(cmd.Context(), cfg, registry)
			for _, r := range results {
				fmt.Fprintln(out, renderCheck(r, colorize))
			}
			if failed := preflight.Failed(results); len(failed) > 0 {
				return errors.New("preflight failed")
			}
			return nil
		},
	}
}

func renderCheck(r preflight.Result, colorize bool) string {
	status, color := "[OK]", ansiGreen
	if !r.Passed {
		status, color = "[ERROR]", ansiRed
	}
	line := fmt.Sprintf("  %-*s %s", checkLabelWidth, r.Name+":", status)
	if r.Detail != "" {
		line += " " + r.Detail
	}
	return paint(color, line, colorize)
}

func paint(color, s string, colorize bool) string {
	if !colorize {
		return s
	}
	return color + s + ansiReset
}

// shouldColorize reports whether w is a terminal and NO_COLOR is unset.
func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
