/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pandamarket/apiserver/config"
	"github.com/pandamarket/apiserver/internal/mq"
	"github.com/pandamarket/apiserver/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// notifierCmd represents the notifier command
var notifierCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Consumes notification events from the broker",
	Long: `Consumes notification events published by the backend server and
delivers them to recipients. Requires MQ_BACKEND to be configured. Usage:

	pandamarket notifier
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		zapLogger, err := zap.NewProduction()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = zapLogger.Sync()
		}()
		logger := zapLogger.Sugar()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open broker: %v\n", err)
			os.Exit(1)
		}
		if broker == nil {
			fmt.Fprintln(os.Stderr, "no mq backend configured, set MQ_BACKEND")
			os.Exit(1)
		}
		defer func() {
			_ = broker.Close()
		}()

		notifier := services.NewNotifier(broker, cfg.MQ.Channel, services.NewLogPusher(logger), logger)

		logger.Infow("consuming notification events", "channel", cfg.MQ.Channel)
		if err := notifier.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "notifier error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(notifierCmd)
}
