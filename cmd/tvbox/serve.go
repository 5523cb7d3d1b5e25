package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pokerjest/tvboxfeed/internal/api"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the feeds over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, reg, logger, err := opts.setup()
			if err != nil {
				return err
			}
			defer reg.Close()

			if port == 0 {
				port = cfg.Server.Port
			}
			gin.SetMode(cfg.Server.Mode)
			router := api.NewRouter(api.NewServer(reg, logger))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
				// SSE 连接随进程信号一起结束
				BaseContext: func(net.Listener) context.Context { return ctx },
			}

			errCh := make(chan error, 1)
			go func() {
				logger.WithField("addr", srv.Addr).Info("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from config)")
	return cmd
}
