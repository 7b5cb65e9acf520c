package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codefionn/gencalc/internal/assistant"
	"github.com/codefionn/gencalc/internal/consts"
	"github.com/codefionn/gencalc/internal/securemem"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question...>",
	Short: "Ask the math assistant a single question",
	Long: `Ask sends one question to the configured AI provider and prints the
Markdown answer. The exit code is 1 when the assistant is unavailable.

Example:
  gencalc ask 'A train travels 120 km in 1.5 hours. What is its speed?'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		securemem.Init()
		env, err := setup(true)
		if err != nil {
			return err
		}
		ok := printAnswer(cmd.Context(), cmd.OutOrStdout(), env.solver, strings.Join(args, " "))
		env.close()
		if !ok {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

// printAnswer writes the solver's reply to query and reports whether it
// succeeded.
func printAnswer(ctx context.Context, w io.Writer, solver *assistant.Solver, query string) bool {
	ctx, cancel := context.WithTimeout(ctx, consts.AssistantTimeout)
	defer cancel()

	reply := solver.Solve(ctx, query)
	if reply.IsError {
		fmt.Fprintln(w, color.RedString(reply.Text))
		return false
	}
	fmt.Fprintln(w, reply.Text)
	return true
}
