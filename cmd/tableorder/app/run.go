package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aq2208/tableorder/configs"
	"github.com/aq2208/tableorder/internal/adapter/backend"
	"github.com/aq2208/tableorder/internal/adapter/cache"
	httpadapter "github.com/aq2208/tableorder/internal/adapter/http"
	"github.com/aq2208/tableorder/internal/adapter/http/middleware"
	"github.com/aq2208/tableorder/internal/adapter/kafka"
	"github.com/aq2208/tableorder/internal/adapter/observ"
	"github.com/aq2208/tableorder/internal/adapter/queue"
	"github.com/aq2208/tableorder/internal/adapter/repo"
	domain "github.com/aq2208/tableorder/internal/entity"
	"github.com/aq2208/tableorder/internal/logging"
	"github.com/aq2208/tableorder/internal/security"
	"github.com/aq2208/tableorder/internal/usecase"
	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// App is the HTTP server plus its background workers.
type App struct {
	server  *http.Server
	workers []func(ctx context.Context) error
}

func InitWithConfig(ctx context.Context, cfg configs.Config) (*App, func(), error) {
	lg := logging.New("bootstrap")
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		closers = nil
	}
	fail := func(err error) (*App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	fee, err := cfg.ServiceFee()
	if err != nil {
		return nil, nil, err
	}
	pricing := domain.Pricing{ServiceFee: fee}

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, func() { _ = db.Close() })
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = db.PingContext(pctx)
	cancel()
	if err != nil {
		return fail(fmt.Errorf("mysql ping: %w", err))
	}
	if cfg.MySQL.Migrate {
		if err := repo.Migrate(db); err != nil {
			return fail(err)
		}
	}

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	closers = append(closers, func() { _ = rdb.Close() })
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fail(fmt.Errorf("redis ping: %w", err))
	}

	// init rabbitmq
	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		return fail(fmt.Errorf("rabbitmq dial: %w", err))
	}
	closers = append(closers, func() { _ = conn.Close() })
	pubCh, err := conn.Channel()
	if err != nil {
		return fail(err)
	}
	consCh, err := conn.Channel()
	if err != nil {
		return fail(err)
	}

	// infra
	api := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, cfg.App.Name)
	sessionStore := cache.NewRedisSessionStore(rdb)
	cartStore := cache.NewRedisCartStore(rdb, cfg.Cart.TTL)
	lock := cache.NewRedisCheckoutLock(rdb, cfg.Checkout.LockTTL)
	statuses := cache.NewRedisStatusCache(rdb, cfg.Cache.StatusTTL)
	pending := repo.NewMySQLPendingOrderRepo(db)
	outbox := repo.NewMySQLOutboxRepo(db)
	producer, err := queue.NewRabbitProducer(pubCh, cfg.Rabbit.Exchange, cfg.Rabbit.RoutingKey)
	if err != nil {
		return fail(err)
	}
	rec := observ.NewPromRecorder(prometheus.DefaultRegisterer)

	// use cases
	sessions := usecase.NewSessions(sessionStore, api, cartStore, pending)
	carts := usecase.NewCarts(sessions, cartStore, pricing)
	dispatcher := usecase.NewPaymentDispatcher(api, usecase.DispatchOptions{
		SimulateWithoutURL: cfg.Payment.SimulateWithoutURL,
		SimulateDelay:      cfg.Payment.SimulateDelay,
	})
	checkout := usecase.NewCheckout(
		sessions,
		cartStore,
		usecase.NewStockValidator(api, cfg.Checkout.StockCheckConcurrency, rec),
		usecase.NewOrderCreator(api, pricing),
		dispatcher,
		pending,
		lock,
		pricing,
		rec,
	)
	reconciler := usecase.NewPaymentReconciler(sessions, api, api, pending, cartStore, outbox, statuses, rec)
	relay := usecase.NewOutboxRelay(outbox, producer, cfg.Rabbit.RelayInterval, cfg.Rabbit.RelayBatchSize)

	// consumers
	if err := setupQueue(consCh, cfg, sessions); err != nil {
		return fail(err)
	}
	statusConsumer, err := setupKafkaListener(cfg, statuses)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() { _ = statusConsumer.Group.Close() })

	// init handlers + routers + middleware
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	router := httpadapter.NewRouter(httpadapter.Handlers{
		Session:  httpadapter.NewSessionHandler(sessions, cfg.App.SecureCookie),
		Cart:     httpadapter.NewCartHandler(carts, checkout),
		Checkout: httpadapter.NewCheckoutHandler(checkout, dispatcher),
		Payment:  httpadapter.NewPaymentHandler(reconciler),
		Staff:    httpadapter.NewStaffHandler(api, statuses, cfg.Backend.ServiceToken),
		Token:    httpadapter.NewTokenHandler(cfg, security.NewRegistry(cfg.Security.Clients)),
	}, middleware.NewAuthz(cfg), limiter)

	lg.Info("tableorder: wired", "backend", cfg.Backend.BaseURL, "simulate_without_url", cfg.Payment.SimulateWithoutURL)

	return &App{
		server: &http.Server{
			Addr:         cfg.App.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		},
		workers: []func(context.Context) error{
			relay.Run,
			statusConsumer.Start,
			func(ctx context.Context) error { limiter.Cleanup(ctx); return nil },
		},
	}, cleanup, nil
}

// Run serves until ctx is cancelled, then shuts the server down.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	for _, w := range a.workers {
		g.Go(func() error { return w(logging.WithCtx(gctx, logging.New("worker"))) })
	}
	g.Go(func() error {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(sctx)
	})

	return g.Wait()
}

func setupQueue(ch *amqp.Channel, cfg configs.Config, sessions *usecase.Sessions) error {
	if err := queue.DeclareQueue(ch, cfg.Rabbit.Exchange, cfg.Rabbit.SessionQueue, cfg.Rabbit.SessionKey); err != nil {
		return err
	}
	h := queue.NewSessionRevokedHandler(sessions)

	router := queue.NewRouter(ch, queue.WithPrefetch(cfg.Rabbit.Prefetch))
	router.Register(cfg.Rabbit.SessionQueue, queue.JSONHandler[usecase.SessionRevokedMsg]{HandleFunc: h.HandleRevoked})
	return router.Start()
}

func setupKafkaListener(cfg configs.Config, statuses usecase.OrderStatusCache) (*kafka.Consumer, error) {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return nil, fmt.Errorf("kafka group: %w", err)
	}
	h := kafka.NewOrderStatusChangedHandler(statuses)
	return kafka.NewConsumer(grp, []string{cfg.Kafka.TopicStatus}, h.Handle), nil
}
