package main // process entry point

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/table-reservation/internal/booking"
	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/database"
	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/repository/memory"
	"github.com/iliyamo/table-reservation/internal/router"
	"github.com/iliyamo/table-reservation/internal/service"
	"github.com/iliyamo/table-reservation/internal/utils"
)

// backend is everything the handlers and the engine need from storage.
type backend interface {
	booking.Store
	handler.TableStore
	handler.ReservationStore
}

type accounts interface {
	handler.UserStore
	handler.TokenStore
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

func main() {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	log := utils.NewLogger(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store  backend
		users  accounts
		health echo.HandlerFunc
	)
	switch cfg.Storage {
	case config.StorageMemory:
		mem := memory.New()
		store, users = mem, mem
		health = handler.Health(nil)
		log.Warn("using in-memory storage; data is lost on restart")
	default:
		db, err := database.Open(ctx, cfg.DB)
		if err != nil {
			log.WithError(err).Fatal("database connection failed")
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("schema migration failed")
		}
		store = repository.NewStore(db, cfg.TxMaxRetries, log)
		users = struct {
			*repository.UserRepo
			*repository.TokenRepo
		}{repository.NewUserRepo(db), repository.NewTokenRepo(db)}
		health = handler.Health(db)
	}

	if created, err := handler.EnsureOwner(ctx, users, cfg.Bootstrap, cfg.BcryptCost); err != nil {
		log.WithError(err).Fatal("bootstrap owner failed")
	} else if created {
		log.WithFields(logrus.Fields{"email": cfg.Bootstrap.Email, "tenant_id": cfg.Bootstrap.TenantID}).Info("bootstrap owner created")
	}

	opts := []booking.Option{booking.WithLogger(log), booking.WithServicePeriods(cfg.ServicePeriods)}
	switch cfg.EventSink {
	case config.SinkRabbitMQ:
		pub := service.NewRabbitPublisher(cfg.RabbitMQURL, log)
		defer pub.Close()
		opts = append(opts, booking.WithNotifier(pub))
		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, Log: log.WithField("component", "consumer")}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("reservation consumer stopped")
			}
		}()
	case config.SinkKafka:
		pub := service.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer pub.Close()
		opts = append(opts, booking.WithNotifier(pub))
	}
	engine := booking.New(store, opts...)

	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		log.WithError(err).Warn("redis unavailable; rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(log))

	router.RegisterRoutes(e, health)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, users, log), cfg.JWTSecret)
	router.RegisterStaff(e,
		handler.NewTableHandler(store, engine, service.TableQR{BaseURL: cfg.PublicBaseURL}, cache, log),
		handler.NewReservationHandler(store, engine, cache, log),
		cfg.JWTSecret,
	)
	router.RegisterPublic(e,
		handler.NewPublicHandler(engine, store, log),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
		cache.Middleware(),
	)

	go purgeTokens(ctx, users, log)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: cors.New(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"X-Cache", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
			AllowCredentials: true,
		}).Handler(e),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "env": cfg.Env, "storage": cfg.Storage}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}

// purgeTokens deletes expired refresh tokens once an hour.
func purgeTokens(ctx context.Context, users accounts, log logrus.FieldLogger) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := users.PurgeExpired(ctx, time.Now().UTC())
			if err != nil {
				log.WithError(err).Warn("refresh token purge failed")
				continue
			}
			if n > 0 {
				log.WithField("deleted", n).Debug("expired refresh tokens purged")
			}
		}
	}
}
