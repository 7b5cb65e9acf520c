package main

import (
	"context"
	"fmt"
	"log"

	"github.com/codefionn/gencalc/internal/assistant"
	"github.com/codefionn/gencalc/internal/calculator"
	"github.com/codefionn/gencalc/internal/config"
	"github.com/codefionn/gencalc/internal/history"
	"github.com/codefionn/gencalc/internal/securemem"
	"github.com/codefionn/gencalc/internal/tui"
	"github.com/spf13/cobra"
)

var (
	configFile string
	useDegrees bool
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gencalc",
	Short: "Terminal calculator with a math assistant",
	Long: `gencalc is a keyboard driven calculator for the terminal.

It has a standard keypad, a scientific keypad with trig and log functions
and an assistant mode that answers math questions in Markdown.

Use 'gencalc eval' for one-off expressions and 'gencalc serve' for the
HTTP and WebSocket API.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Configuration file (JSON, default "+config.GetConfigPath()+")")
	rootCmd.PersistentFlags().BoolVar(&useDegrees, "deg", false, "Use degrees for sin, cos and tan")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error, none)")
}

func runTUI(ctx context.Context) error {
	securemem.Init()
	env, err := setup(true)
	if err != nil {
		return err
	}
	defer env.close()

	store := history.New(env.cfg.HistoryLimit)
	ctrl := calculator.New(store, env.cfg.AngleMode, env.cfg.StartMode())
	model := tui.New(ctrl, env.solver, tui.WithAnimationsDisabled(env.cfg.DisableAnimations))
	program := tui.NewProgram(model)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go env.watch(ctx, func(prev, next *config.Config, solver *assistant.Solver) {
		store.SetLimit(next.HistoryLimit)
		program.Send(settingsMsg(prev, next, solver))
	})

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// settingsMsg describes a reload to the running TUI. The angle is only sent
// when the file changed it, so a toggle made during the session survives
// unrelated edits.
func settingsMsg(prev, next *config.Config, solver *assistant.Solver) tui.SettingsMsg {
	msg := tui.SettingsMsg{Solver: solver}
	if prev == nil || prev.AngleMode != next.AngleMode {
		angle := next.AngleMode
		msg.Angle = &angle
	}
	return msg
}
