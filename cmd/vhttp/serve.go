package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kyleterry/vhttp/pkg/config"
	"github.com/kyleterry/vhttp/pkg/logging"
	"github.com/kyleterry/vhttp/pkg/server"
)

func newServeCmd() *cobra.Command {
	var (
		snap     snapshotFlags
		bindAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Listen for HTTP requests and answer the virtual routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			snap.apply(cmd, cfg)
			if cmd.Flags().Changed("bind") {
				cfg.BindAddr = bindAddr
			}

			logger := logging.New(cfg.Log)

			s, channel, err := setup(cfg, logger)
			if err != nil {
				return err
			}

			srv := server.New(cfg, s, channel, logging.WithComponent(logger, "server"))

			cancel, errch := srv.Run(context.Background())

			if code := trap(logger, cancel, errch); code != 0 {
				os.Exit(code)
			}

			return nil
		},
	}

	snap.register(cmd)
	cmd.Flags().StringVar(&bindAddr, "bind", "", "address to listen on (default from VHTTP_BINDADDR)")

	return cmd
}

func trap(logger zerolog.Logger, cancel context.CancelFunc, errch chan error) int {
	sigch := make(chan os.Signal, 1)

	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)

	select {
	case sig := <-sigch:
		switch sig {
		case syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt:
			cancel()

			if err := <-errch; err != nil {
				logger.Error().Err(err).Msg("server stopped")

				return 1
			}

			return 0

		}
	case err := <-errch:
		if err != nil {
			logger.Error().Err(err).Msg("server stopped")

			return 1
		}
	}

	return 0
}
