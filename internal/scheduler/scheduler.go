package scheduler

import (
	"context"
	"homestay/config"
	bookingService "homestay/internal/domains/booking/service"
	outboxService "homestay/internal/domains/outbox/service"
	"homestay/shared/timezone"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	defaultCompleteBookingsSpec = "5 0 * * *"
	jobTimeout                  = time.Minute
)

// Scheduler runs the in-process background work: the booking completion job and, when enabled, the outbox relay.
type Scheduler struct {
	cron    *cron.Cron
	booking bookingService.Booking
	relay   outboxService.Relay
	cfg     *config.Config
	cancel  context.CancelFunc
}

func New(cfg *config.Config, booking bookingService.Booking, relay outboxService.Relay) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(timezone.GetLocation())),
		booking: booking,
		relay:   relay,
		cfg:     cfg,
	}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if s.cfg.Scheduler.Enable {
		spec := s.cfg.Scheduler.CompleteBookingsSpec
		if spec == "" {
			spec = defaultCompleteBookingsSpec
		}

		if _, err := s.cron.AddFunc(spec, func() { s.CompleteBookings(ctx) }); err != nil {
			log.Fatal().Err(err).Str("spec", spec).Msg("Invalid completion schedule")
		}

		s.cron.Start()
		log.Info().Str("spec", spec).Msg("Booking completion scheduled")
	}

	if s.cfg.Outbox.RunInApp {
		go s.relay.Run(ctx)
	}
}

// CompleteBookings runs one pass of the completion job.
func (s *Scheduler) CompleteBookings(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	res, err := s.booking.CompleteDue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to complete due bookings")

		return
	}

	log.Info().Int64("completed", res.Completed).Msg("completed due bookings")
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}

	<-s.cron.Stop().Done()
}
