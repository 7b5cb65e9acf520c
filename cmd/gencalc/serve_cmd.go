package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/codefionn/gencalc/internal/assistant"
	"github.com/codefionn/gencalc/internal/config"
	"github.com/codefionn/gencalc/internal/consts"
	"github.com/codefionn/gencalc/internal/history"
	"github.com/codefionn/gencalc/internal/web"
	"github.com/fatih/color"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and WebSocket API",
	Long: `Serve exposes the evaluator, the history and the assistant over HTTP.

Endpoints:
  GET    /health         - Health check
  POST   /api/evaluate   - Evaluate an expression
  GET    /api/history    - List history items
  DELETE /api/history    - Clear history
  POST   /api/solve      - Ask the assistant
  GET    /ws             - Streaming assistant chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, "+consts.DefaultServerAddr+")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	env, err := setup(true)
	if err != nil {
		return err
	}

	addr := env.cfg.Server.Addr
	if strings.TrimSpace(serveAddr) != "" {
		addr = serveAddr
	}

	srv := web.NewServer(web.Options{
		Addr:      addr,
		History:   history.New(env.cfg.HistoryLimit),
		Solver:    env.solver,
		AngleMode: env.cfg.AngleMode,
	})
	if err := srv.Start(); err != nil {
		env.close()
		return err
	}
	fmt.Fprintf(os.Stderr, "Listening on %s\n", color.CyanString("http://"+srv.Addr()))

	watchCtx, stopWatch := context.WithCancel(ctx)
	go env.watch(watchCtx, func(_, next *config.Config, solver *assistant.Solver) {
		srv.History().SetLimit(next.HistoryLimit)
		srv.SetSolver(solver)
	})

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		consts.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"web": func(ctx context.Context) error {
				stopWatch()
				return srv.Shutdown(ctx)
			},
		},
	)

	select {
	case exitCode := <-wait:
		env.close()
		os.Exit(exitCode)
	case err := <-srv.Err():
		stopWatch()
		env.close()
		if err != nil {
			return fmt.Errorf("web server stopped: %w", err)
		}
	}
	return nil
}
