package router

import (
	_ "homestay/docs" // registers the swagger document
	"homestay/infras/metrics"
	"homestay/internal/handlers/auth"
	"homestay/internal/handlers/booking"
	"homestay/internal/handlers/cart"
	"homestay/internal/handlers/cron"
	"homestay/internal/handlers/health"
	"homestay/internal/handlers/homestay"
	"homestay/internal/handlers/notification"
	"homestay/internal/handlers/payment"
	"homestay/internal/handlers/review"
	"homestay/internal/handlers/room"
	"homestay/internal/handlers/user"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	ReadinessPath = "/health/ready"
	MetricsPath   = "/metrics"
)

type DomainHandlers struct {
	Auth         auth.Handler
	User         user.Handler
	Homestay     homestay.Handler
	Room         room.Handler
	Cart         cart.Handler
	Booking      booking.Handler
	Payment      payment.Handler
	Review       review.Handler
	Notification notification.Handler
	Cron         cron.Handler
	Health       health.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	Metrics        *metrics.Metrics
}

func (r *Router) SetupRoutes(router chi.Router) {
	r.DomainHandlers.Health.Router(router)
	router.Handle(MetricsPath, r.Metrics.Handler())
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Homestay.Router(routerGroup)
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Review.Router(routerGroup)
		r.DomainHandlers.Cart.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Payment.Router(routerGroup)
		r.DomainHandlers.Notification.Router(routerGroup)
		r.DomainHandlers.Cron.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, metrics *metrics.Metrics) Router {
	return Router{
		DomainHandlers: domainHandlers,
		Metrics:        metrics,
	}
}
