package main

import (
	"homestay/config"
	"homestay/di"
	"homestay/shared/logger"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal().Err(err).Msg("worker failed")
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Background jobs of the homestay API",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			cfg := config.Get()
			logger.InitLogger(cfg)
			logger.SetLogLevel(cfg)
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(newRelayCommand(), newCompleteBookingsCommand())

	return cmd
}

func newRelayCommand() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Deliver pending outbox events to Pusher and Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			worker := di.InitializeWorker()

			if once {
				sent, failed, err := worker.Relay.Dispatch(ctx)
				if err != nil {
					return err //nolint:wrapcheck
				}

				log.Info().Int("sent", sent).Int("failed", failed).Msg("outbox batch dispatched")

				return nil
			}

			worker.Relay.Run(ctx)

			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "dispatch a single batch and exit")

	return cmd
}

func newCompleteBookingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete-bookings",
		Short: "Mark paid bookings whose check-out has passed as completed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			worker := di.InitializeWorker()

			res, err := worker.Booking.CompleteDue(cmd.Context())
			if err != nil {
				return err //nolint:wrapcheck
			}

			log.Info().Int64("completed", res.Completed).Msg("completed due bookings")

			return nil
		},
	}
}
