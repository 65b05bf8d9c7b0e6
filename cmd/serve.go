package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/camera-coverage/internal/api"
	"github.com/sells-group/camera-coverage/internal/pipeline"
)

var (
	servePort   int
	serveRecord bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Analyze the input once and serve the results over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		cfg.Server.Port = port
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		p, err := analysisParams(cmd)
		if err != nil {
			return err
		}
		ds, err := loadDataset(ctx)
		if err != nil {
			return err
		}

		var opts []api.Option
		var res *pipeline.Result
		if serveRecord {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if res, _, err = pipeline.NewRunner(st).Execute(ctx, ds, p); err != nil {
				return err
			}
			opts = append(opts, api.WithRuns(st))
		} else if res, err = pipeline.Run(ctx, ds, p); err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           api.New(res, opts...).Handler(cfg.Server.AllowedOrigins...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port), zap.Int("cameras", ds.Len()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveRecord, "record", false, "record the analysis in run history and expose /runs")
	rootCmd.AddCommand(serveCmd)
}
