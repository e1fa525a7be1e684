package cmd

import (
	"context"
	"fmt"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/spf13/cobra"

	"github.com/nikhilsahni7/huddle-signal/pkg/config"
	"github.com/nikhilsahni7/huddle-signal/pkg/server"
	"github.com/nikhilsahni7/huddle-signal/pkg/signaling"
	"github.com/nikhilsahni7/huddle-signal/pkg/util"
)

var serveOpts config.Options

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the signaling server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), serveOpts)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveOpts.Host, "host", "", "interface to listen on (env HOST)")
	serveCmd.Flags().IntVarP(&serveOpts.Port, "port", "p", 0, "port to listen on (env PORT)")
	serveCmd.Flags().StringVar(&serveOpts.LogLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (env LOG_LEVEL)")
	serveCmd.Flags().StringVar(&serveOpts.EnvFile, "env-file", "", "dotenv file to load before reading the environment")

	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, opts config.Options) error {
	cfg, err := config.Load(opts)
	if err != nil {
		return err
	}
	util.Init(cfg.LogLevel)

	hub := signaling.NewHub(signaling.HubConfig{
		SendBufferSize: cfg.SendBufferSize,
		MaxMessageSize: int64(cfg.MaxMessageSize),
	})
	srv := server.New(cfg, hub)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()

	wait := gfshutdown.GracefulShutdown(ctx, cfg.ShutdownTimeout, map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			util.Info("Shutting down server...")
			return srv.Shutdown(ctx)
		},
		"hub": func(ctx context.Context) error {
			hub.Close()
			return nil
		},
	})

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		// Shutdown stopped the listener; the hub may still be closing
	case code := <-wait:
		return exitWith(code)
	}
	return exitWith(<-wait)
}

func exitWith(code int) error {
	util.Info("Server exited with code %d", code)
	if code != 0 {
		os.Exit(code)
	}
	return nil
}
