package di

import (
	bookingService "homestay/internal/domains/booking/service"
	outboxService "homestay/internal/domains/outbox/service"
	"homestay/internal/scheduler"
	"homestay/transport/http"
)

// App is the API process. The HTTP server and the scheduler share one graph.
type App struct {
	HTTP      *http.HTTP
	Scheduler *scheduler.Scheduler
}

// Worker carries what the background commands need.
type Worker struct {
	Relay   outboxService.Relay
	Booking bookingService.Booking
}
