package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/dto"
	bookingapp "tourhub/internal/app/handlers/booking"
	listingapp "tourhub/internal/app/handlers/listings"
	orderapp "tourhub/internal/app/handlers/orders"
	paymentapp "tourhub/internal/app/handlers/payments"
	reviewapp "tourhub/internal/app/handlers/reviews"
	"tourhub/internal/app/middleware"
	appoutbox "tourhub/internal/app/outbox"
	"tourhub/internal/app/policies"
	"tourhub/internal/app/queries"
	authsvc "tourhub/internal/app/services/auth"
	"tourhub/internal/app/uow"
	"tourhub/internal/app/validation"
	domainuser "tourhub/internal/domain/user"
	"tourhub/internal/domain/verification"
	"tourhub/internal/infra/broker/kafka"
	"tourhub/internal/infra/cache/redis"
	"tourhub/internal/infra/config"
	mongodb "tourhub/internal/infra/db/mongo"
	ginserver "tourhub/internal/infra/http/gin"
	"tourhub/internal/infra/mail"
	"tourhub/internal/infra/obs"
	outboxworker "tourhub/internal/infra/outbox"
	"tourhub/internal/infra/payments/fake"
	stripegw "tourhub/internal/infra/payments/stripe"
	"tourhub/internal/infra/security"
	"tourhub/internal/infra/storage/memory"
	"tourhub/internal/infra/storage/s3"
)

type application struct {
	handlers ginserver.Handlers
	health   obs.HealthHandlers

	worker  *outboxworker.Worker
	wg      sync.WaitGroup
	closers []func(context.Context) error
	once    sync.Once
}

type backends struct {
	factory uow.UoWFactory
	users   domainuser.Repository
	outbox  appoutbox.Outbox
	codes   verification.CodeStore
	gateway policies.PaymentGateway
	upload  policies.Uploader
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	app := &application{health: obs.HealthHandlers{Checks: map[string]obs.Check{}}}
	b, err := app.connect(ctx, cfg, logger)
	if err != nil {
		app.close(logger)
		return nil, err
	}

	encoder := appoutbox.JSONEventEncoder{}
	validator := validation.New()
	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()

	commands.RegisterHandler[bookingapp.CreateBookingCommand, dto.CreateBookingResult](commandBus, bookingapp.CreateBookingCommand{}.Key(), &bookingapp.CreateBookingHandler{
		UoWFactory: b.factory, Outbox: b.outbox, Encoder: encoder, Logger: logger, EnforceAvailability: cfg.EnforceAvailability,
	})
	commands.RegisterHandler[bookingapp.UpdateBookingStatusCommand, dto.Booking](commandBus, bookingapp.UpdateBookingStatusCommand{}.Key(), &bookingapp.UpdateBookingStatusHandler{
		UoWFactory: b.factory, Outbox: b.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[bookingapp.DeleteBookingCommand, dto.Booking](commandBus, bookingapp.DeleteBookingCommand{}.Key(), &bookingapp.DeleteBookingHandler{
		UoWFactory: b.factory, Outbox: b.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[orderapp.CreateOrderCommand, dto.CreateOrderResult](commandBus, orderapp.CreateOrderCommand{}.Key(), &orderapp.CreateOrderHandler{
		UoWFactory: b.factory, Outbox: b.outbox, Encoder: encoder, Logger: logger, EnforceAvailability: cfg.EnforceAvailability,
	})
	commands.RegisterHandler[orderapp.UpdateOrderStatusCommand, dto.Order](commandBus, orderapp.UpdateOrderStatusCommand{}.Key(), &orderapp.UpdateOrderStatusHandler{
		UoWFactory: b.factory, Outbox: b.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[orderapp.DeleteOrderCommand, dto.Order](commandBus, orderapp.DeleteOrderCommand{}.Key(), &orderapp.DeleteOrderHandler{
		UoWFactory: b.factory, Logger: logger,
	})
	commands.RegisterHandler[paymentapp.CreateIntentCommand, dto.CreateIntentResult](commandBus, paymentapp.CreateIntentCommand{}.Key(), &paymentapp.CreateIntentHandler{
		UoWFactory: b.factory, Gateway: b.gateway, Currency: cfg.PaymentCurrency, MinAmount: cfg.PaymentMinAmount, Logger: logger,
	})
	commands.RegisterHandler[paymentapp.ConfirmPaymentCommand, dto.ConfirmPaymentResult](commandBus, paymentapp.ConfirmPaymentCommand{}.Key(), &paymentapp.ConfirmPaymentHandler{
		UoWFactory: b.factory, Gateway: b.gateway, Outbox: b.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[reviewapp.SubmitReviewCommand, dto.Review](commandBus, reviewapp.SubmitReviewCommand{}.Key(), &reviewapp.SubmitReviewHandler{
		UoWFactory: b.factory, Outbox: b.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[listingapp.CreateHotelCommand, dto.Hotel](commandBus, listingapp.CreateHotelCommand{}.Key(), &listingapp.CreateHotelHandler{
		UoWFactory: b.factory, Outbox: b.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[listingapp.UpdateHotelCommand, dto.Hotel](commandBus, listingapp.UpdateHotelCommand{}.Key(), &listingapp.UpdateHotelHandler{
		UoWFactory: b.factory, Outbox: b.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[listingapp.DeleteHotelCommand, dto.Hotel](commandBus, listingapp.DeleteHotelCommand{}.Key(), &listingapp.DeleteHotelHandler{
		UoWFactory: b.factory, Outbox: b.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[listingapp.CreateVehicleCommand, dto.Vehicle](commandBus, listingapp.CreateVehicleCommand{}.Key(), &listingapp.CreateVehicleHandler{
		UoWFactory: b.factory, Outbox: b.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[listingapp.UpdateVehicleCommand, dto.Vehicle](commandBus, listingapp.UpdateVehicleCommand{}.Key(), &listingapp.UpdateVehicleHandler{
		UoWFactory: b.factory, Outbox: b.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[listingapp.DeleteVehicleCommand, dto.Vehicle](commandBus, listingapp.DeleteVehicleCommand{}.Key(), &listingapp.DeleteVehicleHandler{
		UoWFactory: b.factory, Outbox: b.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler[listingapp.UploadListingPhotoCommand, dto.PhotoUploadResult](commandBus, listingapp.UploadListingPhotoCommand{}.Key(), &listingapp.UploadListingPhotoHandler{
		UoWFactory: b.factory, Uploader: b.upload, Logger: logger,
	})

	queries.RegisterHandler[bookingapp.GetBookingQuery, dto.Booking](queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{UoWFactory: b.factory})
	queries.RegisterHandler[bookingapp.ListCustomerBookingsQuery, dto.BookingCollection](queryBus, bookingapp.ListCustomerBookingsQuery{}.Key(), &bookingapp.ListCustomerBookingsHandler{UoWFactory: b.factory})
	queries.RegisterHandler[bookingapp.ListProviderBookingsQuery, dto.BookingCollection](queryBus, bookingapp.ListProviderBookingsQuery{}.Key(), &bookingapp.ListProviderBookingsHandler{UoWFactory: b.factory})
	queries.RegisterHandler[orderapp.GetOrderQuery, dto.Order](queryBus, orderapp.GetOrderQuery{}.Key(), &orderapp.GetOrderHandler{UoWFactory: b.factory})
	queries.RegisterHandler[orderapp.ListCustomerOrdersQuery, dto.OrderCollection](queryBus, orderapp.ListCustomerOrdersQuery{}.Key(), &orderapp.ListCustomerOrdersHandler{UoWFactory: b.factory})
	queries.RegisterHandler[orderapp.ListProviderOrdersQuery, dto.OrderCollection](queryBus, orderapp.ListProviderOrdersQuery{}.Key(), &orderapp.ListProviderOrdersHandler{UoWFactory: b.factory})
	queries.RegisterHandler[reviewapp.ListListingReviewsQuery, dto.ListingReviews](queryBus, reviewapp.ListListingReviewsQuery{}.Key(), &reviewapp.ListListingReviewsHandler{UoWFactory: b.factory})
	queries.RegisterHandler[reviewapp.BookingReviewQuery, dto.ReviewEnvelope](queryBus, reviewapp.BookingReviewQuery{}.Key(), &reviewapp.BookingReviewHandler{UoWFactory: b.factory})
	queries.RegisterHandler[listingapp.GetHotelQuery, dto.Hotel](queryBus, listingapp.GetHotelQuery{}.Key(), &listingapp.GetHotelHandler{UoWFactory: b.factory})
	queries.RegisterHandler[listingapp.ListHotelsQuery, dto.HotelCollection](queryBus, listingapp.ListHotelsQuery{}.Key(), &listingapp.ListHotelsHandler{UoWFactory: b.factory})
	queries.RegisterHandler[listingapp.GetVehicleQuery, dto.Vehicle](queryBus, listingapp.GetVehicleQuery{}.Key(), &listingapp.GetVehicleHandler{UoWFactory: b.factory})
	queries.RegisterHandler[listingapp.ListVehiclesQuery, dto.VehicleCollection](queryBus, listingapp.ListVehiclesQuery{}.Key(), &listingapp.ListVehiclesHandler{UoWFactory: b.factory})

	cmds := middleware.ChainCommands(
		commandBus,
		middleware.Logging(logger),
		middleware.Validation(validator),
		middleware.OutboxFlush(b.outbox),
		middleware.Transaction(b.factory),
	)
	qs := middleware.ChainQueries(queryBus, middleware.QueryValidation(validator))

	tokens := security.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	auth := &authsvc.Service{
		Users:     b.users,
		Passwords: security.BcryptHasher{},
		Tokens:    tokens,
		Codes:     b.codes,
		Mailer:    mail.LogMailer{Logger: logger, RevealCodes: cfg.Env == "dev" || cfg.Env == "local"},
		Validator: validator,
		CodeTTL:   cfg.VerificationCodeTTL,
		Logger:    logger,
	}

	app.handlers = ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: auth, Logger: logger},
		Hotels:         ginserver.HotelHandler{Commands: cmds, Queries: qs, Logger: logger},
		Vehicles:       ginserver.VehicleHandler{Commands: cmds, Queries: qs, Logger: logger},
		Bookings:       ginserver.BookingHandler{Commands: cmds, Queries: qs, Logger: logger},
		Orders:         ginserver.OrderHandler{Commands: cmds, Queries: qs, Logger: logger},
		Payments:       ginserver.PaymentHandler{Commands: cmds, Logger: logger},
		Reviews:        ginserver.ReviewHandler{Commands: cmds, Queries: qs, Logger: logger},
		Me:             ginserver.MeHandler{Queries: qs, Logger: logger},
		Provider:       ginserver.ProviderHandler{Queries: qs, Logger: logger},
		AuthMiddleware: ginserver.AuthMiddleware{Tokens: tokens, Logger: logger}.Handle,
		AuthLimiter:    ginserver.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst).Limit(),
	}
	return app, nil
}

// connect selects each backend from configuration. Anything left unset runs
// in memory so the service starts without external dependencies.
func (app *application) connect(ctx context.Context, cfg config.Config, logger *slog.Logger) (backends, error) {
	var b backends

	var producer *kafka.Producer
	if cfg.UseKafka() {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, "tourhub")
		if err != nil {
			return b, fmt.Errorf("kafka producer: %w", err)
		}
		producer = p
		app.closers = append(app.closers, func(context.Context) error { return p.Close() })
		logger.Info("kafka producer connected", "brokers", cfg.KafkaBrokers)
	}
	format := outboxworker.CloudEvents{TopicPrefix: cfg.KafkaTopicPrefix}

	if cfg.UseMongo() {
		client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return b, fmt.Errorf("mongo connect: %w", err)
		}
		app.closers = append(app.closers, client.Close)
		app.health.Checks["mongo"] = client.Ping
		if err := mongodb.EnsureIndexes(ctx, client.DB); err != nil {
			return b, fmt.Errorf("mongo indexes: %w", err)
		}
		factory := mongodb.NewFactory(client.DB)
		b.factory = factory
		b.users = factory.UsersRepo

		store, err := outboxworker.NewStore(ctx, client.DB)
		if err != nil {
			return b, fmt.Errorf("outbox store: %w", err)
		}
		b.outbox = store
		if producer != nil {
			app.worker = &outboxworker.Worker{
				Queue:    store,
				Producer: producer,
				Interval: cfg.OutboxPollInterval,
				Backoff:  cfg.RetryBackoff,
				Logger:   logger,
				Format:   format,
			}
		}
		logger.Info("mongo storage selected", "database", cfg.MongoDB)
	} else {
		factory := memory.NewFactory()
		b.factory = factory
		b.users = factory.UsersRepo
		box := memory.NewOutbox(logger)
		if producer != nil {
			box.Publisher = outboxworker.Publisher{Producer: producer, Format: format}
		}
		b.outbox = box
		logger.Info("in-memory storage selected")
	}

	if cfg.RedisAddr != "" {
		client, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return b, fmt.Errorf("redis connect: %w", err)
		}
		app.closers = append(app.closers, func(context.Context) error { return client.Close() })
		app.health.Checks["redis"] = func(ctx context.Context) error { return pingRedis(ctx, client) }
		b.codes = redis.NewCodeStore(client)
	} else {
		b.codes = memory.NewCodeStore(time.Now)
	}

	if cfg.StripeSecretKey != "" {
		b.gateway = stripegw.New(cfg.StripeSecretKey, nil, logger)
	} else {
		logger.Warn("stripe key missing, using in-process payment gateway")
		b.gateway = fake.New()
	}

	if cfg.UseS3() {
		client, err := s3.NewClient(s3.Config{
			Endpoint:       cfg.S3Endpoint,
			UseSSL:         cfg.S3UseSSL,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			PublicEndpoint: cfg.S3PublicEndpoint,
			PublicRead:     true,
		}, logger)
		if err != nil {
			return b, fmt.Errorf("s3 client: %w", err)
		}
		app.health.Checks["s3"] = client.Ping
		b.upload = client
	} else {
		b.upload = s3.NoopUploader{}
	}
	return b, nil
}

func (app *application) startBackground(ctx context.Context) {
	if app.worker == nil {
		return
	}
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		if err := app.worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && app.worker.Logger != nil {
			app.worker.Logger.Error("outbox worker stopped", "error", err)
		}
	}()
}

func (app *application) wait() {
	app.wg.Wait()
}

func (app *application) close(logger *slog.Logger) {
	app.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for i := len(app.closers) - 1; i >= 0; i-- {
			if err := app.closers[i](ctx); err != nil {
				logger.Warn("shutdown step failed", "error", err)
			}
		}
	})
}

func pingRedis(ctx context.Context, client *goredis.Client) error {
	return client.Ping(ctx).Err()
}
