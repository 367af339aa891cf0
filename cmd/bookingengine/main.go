package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookingengine/internal/app/commands"
	availabilityapp "bookingengine/internal/app/handlers/availability"
	bookingapp "bookingengine/internal/app/handlers/booking"
	pricingapp "bookingengine/internal/app/handlers/pricing"
	"bookingengine/internal/app/middleware"
	appoutbox "bookingengine/internal/app/outbox"
	"bookingengine/internal/app/policies"
	"bookingengine/internal/app/queries"
	"bookingengine/internal/app/uow"
	domainavailability "bookingengine/internal/domain/availability"
	domainbooking "bookingengine/internal/domain/booking"
	domainresource "bookingengine/internal/domain/resource"
	"bookingengine/internal/infra/broker/kafka"
	"bookingengine/internal/infra/config"
	mongodb "bookingengine/internal/infra/db/mongo"
	"bookingengine/internal/infra/db/postgres"
	ginserver "bookingengine/internal/infra/http/gin"
	notifymemory "bookingengine/internal/infra/notify/memory"
	notifyredis "bookingengine/internal/infra/notify/redis"
	"bookingengine/internal/infra/obs"
	infraoutbox "bookingengine/internal/infra/outbox"
	"bookingengine/internal/infra/storage/memory"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("prod").Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("bookingengine stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("bookingengine stopped")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := openStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StorageDriver, err)
	}
	defer store.close()
	logger.Info("storage ready", "driver", cfg.StorageDriver)

	if err := seedResources(ctx, cfg.ResourcesFile, store.resources, logger); err != nil {
		return err
	}

	notifier, notifierCheck, err := openNotifier(cfg, logger)
	if err != nil {
		return err
	}

	checks := map[string]obs.Check{"storage": store.ready}
	if notifierCheck != nil {
		checks["notifier"] = notifierCheck
	}

	app := buildApplication(cfg, logger, store, notifier)
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: checks}, app.handlers)

	workerDone := make(chan struct{})
	if cfg.OutboxWorker {
		worker, closeProducer, err := newOutboxWorker(cfg, logger, store.queue)
		if err != nil {
			return err
		}
		defer closeProducer()
		go func() {
			defer close(workerDone)
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
	} else {
		close(workerDone)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	<-workerDone
	return nil
}

type outboxStore interface {
	appoutbox.Outbox
	infraoutbox.Queue
}

type storage struct {
	factory     uow.UoWFactory
	resources   domainresource.Repository
	outbox      appoutbox.Outbox
	queue       infraoutbox.Queue
	idempotency middleware.IdempotencyStore
	ready       obs.Check
	close       func()
}

func openStorage(ctx context.Context, cfg config.Config) (storage, error) {
	switch cfg.StorageDriver {
	case config.StorageMongo:
		client, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storage{}, err
		}
		store, err := mongoStorage(ctx, client, cfg.IdempotencyTTL)
		if err != nil {
			_ = client.Close(context.Background())
			return storage{}, err
		}
		return store, nil

	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return storage{}, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return storage{}, err
		}
		resources := postgres.NewResourceRepository(pool)
		box := postgres.NewOutbox(pool)
		return storage{
			factory:     postgres.Factory{Pool: pool, ResourcesRepo: resources, BookingsRepo: postgres.NewBookingRepository(pool)},
			resources:   resources,
			outbox:      box,
			queue:       box,
			idempotency: postgres.NewIdempotencyStore(pool, cfg.IdempotencyTTL),
			ready:       pool.Ping,
			close:       pool.Close,
		}, nil

	default:
		resources := memory.NewResourceRepository()
		var box outboxStore = memory.NewOutbox()
		return storage{
			factory:     memory.Factory{ResourcesRepo: resources, BookingsRepo: memory.NewBookingRepository()},
			resources:   resources,
			outbox:      box,
			queue:       box,
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			ready:       func(context.Context) error { return nil },
			close:       func() {},
		}, nil
	}
}

func mongoStorage(ctx context.Context, client *mongodb.Client, idempotencyTTL time.Duration) (storage, error) {
	box, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		return storage{}, err
	}
	idem, err := mongodb.NewIdempotencyStore(ctx, client.DB, idempotencyTTL)
	if err != nil {
		return storage{}, err
	}
	resources := mongodb.NewResourceRepository(client.DB)
	bookings := mongodb.NewBookingRepository(client.DB)
	return storage{
		factory:     mongodb.Factory{DB: client.DB, ResourcesRepo: resources, BookingsRepo: bookings},
		resources:   resources,
		outbox:      box,
		queue:       box,
		idempotency: idem,
		ready:       client.Ping,
		close:       func() { _ = client.Close(context.Background()) },
	}, nil
}

// seedResources upserts the resources declared in path. A missing file is not an error.
func seedResources(ctx context.Context, path string, repo domainresource.Repository, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	resources, err := config.LoadResources(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("resources file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("load resources: %w", err)
	}
	for _, res := range resources {
		if err := repo.Save(ctx, res); err != nil {
			return fmt.Errorf("store resource %s: %w", res.ID, err)
		}
		logger.Info("resource imported", "resource_id", res.ID, "type", res.Type)
	}
	return nil
}

func openNotifier(cfg config.Config, logger *slog.Logger) (policies.Notifier, obs.Check, error) {
	if cfg.Notifier != config.NotifierRedis {
		return &notifymemory.Notifier{Logger: logger}, nil, nil
	}
	client := notifyredis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	check := func(ctx context.Context) error { return client.Ping(ctx).Err() }
	return notifyredis.NewNotifier(client), check, nil
}

func newOutboxWorker(cfg config.Config, logger *slog.Logger, queue infraoutbox.Queue) (*infraoutbox.Worker, func(), error) {
	var producer infraoutbox.Producer = infraoutbox.LogProducer{Logger: logger}
	closeProducer := func() {}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		producer = p
		closeProducer = func() {
			if err := p.Close(); err != nil {
				logger.Error("kafka producer close failed", "error", err)
			}
		}
	}
	return &infraoutbox.Worker{
		Queue:       queue,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
		Logger:      logger,
	}, closeProducer, nil
}

type application struct {
	handlers ginserver.Handlers
}

func buildApplication(cfg config.Config, logger *slog.Logger, store storage, notifier policies.Notifier) application {
	now := func() time.Time { return time.Now().UTC() }
	resolver := domainavailability.NewResolver(cfg.HorizonDays, now)
	encoder := appoutbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(), &bookingapp.RequestBookingHandler{
		UoWFactory: store.factory,
		Validator:  domainbooking.NewValidator(resolver),
		Outbox:     store.outbox,
		Encoder:    encoder,
		Notifier:   notifier,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		UoWFactory: store.factory,
		Outbox:     store.outbox,
		Encoder:    encoder,
		Now:        now,
		Logger:     logger,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, availabilityapp.CheckSlotQuery{}.Key(), &availabilityapp.CheckSlotHandler{
		UoWFactory: store.factory,
		Resolver:   resolver,
	})
	queries.RegisterHandler(queryBus, availabilityapp.ListSlotsQuery{}.Key(), &availabilityapp.ListSlotsHandler{
		UoWFactory: store.factory,
		Resolver:   resolver,
	})
	queries.RegisterHandler(queryBus, pricingapp.QuotePriceQuery{}.Key(), &pricingapp.QuotePriceHandler{
		UoWFactory: store.factory,
	})

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Logging(logger),
		middleware.Validation(middleware.SelfValidating{}),
		middleware.Idempotency(store.idempotency, nil),
		middleware.OutboxFlush(store.outbox),
		middleware.Transaction(store.factory, nil),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryLogging(logger),
		middleware.QueryValidation(middleware.SelfValidating{}),
	)

	return application{
		handlers: ginserver.Handlers{
			Booking:      ginserver.BookingHandler{Commands: commandBusWithMiddleware},
			Availability: ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware},
			Pricing:      ginserver.PricingHandler{Queries: queryBusWithMiddleware},
		},
	}
}
