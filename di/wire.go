//go:build wireinject
// +build wireinject

package di

import (
	"homestay/config"
	"homestay/infras/jwt"
	"homestay/infras/kafka"
	"homestay/infras/metrics"
	"homestay/infras/otel"
	"homestay/infras/postgres"
	"homestay/infras/pusher"
	"homestay/infras/redis"
	"homestay/infras/s3"
	"homestay/infras/stripe"
	"homestay/internal/scheduler"
	"homestay/permissions"
	"homestay/shared/cache"
	"homestay/shared/transaction"
	"homestay/transport/http"
	"homestay/transport/http/middleware"
	"homestay/transport/http/router"

	"github.com/google/wire"

	authService "homestay/internal/domains/auth/service"
	"homestay/internal/domains/booking/quote"
	bookingRepository "homestay/internal/domains/booking/repository"
	bookingService "homestay/internal/domains/booking/service"
	cartRepository "homestay/internal/domains/cart/repository"
	cartService "homestay/internal/domains/cart/service"
	homestayRepository "homestay/internal/domains/homestay/repository"
	homestayService "homestay/internal/domains/homestay/service"
	notificationRepository "homestay/internal/domains/notification/repository"
	notificationService "homestay/internal/domains/notification/service"
	outboxRepository "homestay/internal/domains/outbox/repository"
	outboxService "homestay/internal/domains/outbox/service"
	paymentRepository "homestay/internal/domains/payment/repository"
	paymentService "homestay/internal/domains/payment/service"
	reviewRepository "homestay/internal/domains/review/repository"
	reviewService "homestay/internal/domains/review/service"
	roomRepository "homestay/internal/domains/room/repository"
	roomService "homestay/internal/domains/room/service"
	userRepository "homestay/internal/domains/user/repository"
	userService "homestay/internal/domains/user/service"

	authHandler "homestay/internal/handlers/auth"
	bookingHandler "homestay/internal/handlers/booking"
	cartHandler "homestay/internal/handlers/cart"
	cronHandler "homestay/internal/handlers/cron"
	healthHandler "homestay/internal/handlers/health"
	homestayHandler "homestay/internal/handlers/homestay"
	notificationHandler "homestay/internal/handlers/notification"
	paymentHandler "homestay/internal/handlers/payment"
	reviewHandler "homestay/internal/handlers/review"
	roomHandler "homestay/internal/handlers/room"
	userHandler "homestay/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	stripe.New,
	metrics.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	transaction.New,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
	authService.New,
)

var catalogDomain = wire.NewSet(
	homestayRepository.New,
	homestayService.New,
	roomRepository.New,
	roomService.New,
	quote.New,
)

var notificationDomain = wire.NewSet(
	notificationRepository.New,
	notificationService.New,
	wire.Bind(new(notificationService.Notifier), new(notificationService.Notification)),
	outboxRepository.New,
)

var relay = wire.NewSet(
	pusher.New,
	kafka.New,
	outboxService.New,
)

var bookingDomain = wire.NewSet(
	cartRepository.New,
	cartRepository.NewItem,
	cartService.New,
	bookingRepository.New,
	bookingRepository.NewItem,
	bookingService.New,
	paymentRepository.New,
	wire.Struct(new(paymentService.Deps), "*"),
	paymentService.New,
	reviewRepository.New,
	reviewService.New,
)

var domains = wire.NewSet(
	userDomain,
	catalogDomain,
	notificationDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	homestayHandler.New,
	roomHandler.New,
	cartHandler.New,
	bookingHandler.New,
	paymentHandler.New,
	reviewHandler.New,
	notificationHandler.New,
	cronHandler.New,
	healthHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeApp() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		relay,
		http.New,
		scheduler.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}

func InitializeWorker() *Worker {
	wire.Build(
		config.Get,
		postgres.New,
		otel.New,
		metrics.New,
		transaction.New,
		homestayRepository.New,
		paymentRepository.New,
		bookingRepository.New,
		bookingRepository.NewItem,
		bookingService.New,
		notificationDomain,
		relay,
		wire.Struct(new(Worker), "*"),
	)

	return &Worker{}
}
