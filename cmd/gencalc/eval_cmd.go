package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codefionn/gencalc/internal/calc"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <expression...>",
	Short: "Evaluate an expression and print the result",
	Long: `Evaluate joins its arguments into one expression and prints the result
rounded to eight decimal places. The exit code is 1 when the expression is
invalid.

Examples:
  gencalc eval '2 + 3 * 4'
  gencalc eval --deg 'sin(30)'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath())
		if err != nil {
			return err
		}
		if !printEval(cmd.OutOrStdout(), strings.Join(args, " "), cfg.AngleMode) {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

// printEval writes the result of expr and reports whether it evaluated.
func printEval(w io.Writer, expr string, mode calc.AngleMode) bool {
	result := calc.Run(expr, mode)
	if !result.OK() {
		fmt.Fprintln(w, color.RedString(result.Text))
		return false
	}
	fmt.Fprintln(w, color.GreenString(result.Text))
	return true
}
