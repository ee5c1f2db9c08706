package main // Entry point package

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/interview-scheduler/internal/config"
	"github.com/iliyamo/interview-scheduler/internal/database"
	"github.com/iliyamo/interview-scheduler/internal/handler"
	"github.com/iliyamo/interview-scheduler/internal/queue"
	"github.com/iliyamo/interview-scheduler/internal/repository"
	"github.com/iliyamo/interview-scheduler/internal/router"
	"github.com/iliyamo/interview-scheduler/internal/service"
	"github.com/iliyamo/interview-scheduler/internal/session"
	"github.com/iliyamo/interview-scheduler/internal/task"
)

func main() {
	cfg := config.Load()

	stream, err := config.LoadStreamConfig()
	if err != nil {
		log.Fatalf("config: stream: %v", err)
	}
	sched, err := config.LoadScheduleConfig()
	if err != nil {
		log.Fatalf("config: schedule: %v", err)
	}

	db, dialect := openStore(cfg)
	defer db.Close()
	if err := database.Migrate(context.Background(), db, dialect); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users := repository.NewUserRepo(db)
	interviews := repository.NewInterviewRepo(db)
	comments := repository.NewCommentRepo(db)

	var provider session.Provider
	if stream.Enabled() {
		provider = session.NewStreamProvider(stream, nil)
		log.Printf("sessions: using hosted provider at %s", stream.BaseURL)
	} else {
		provider = session.NewLocalProvider()
		log.Printf("sessions: STREAM_API_KEY/STREAM_API_SECRET not set, using in-process provider")
	}

	var events service.EventPublisher
	if cfg.EventsEnabled {
		pub := queue.NewPublisher(config.AMQPURL())
		defer pub.Close()
		events = pub
		go func() {
			if err := queue.StartEventConsumer(ctx, config.AMQPURL(), cfg.EventsLogDir); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("event-consumer: stopped: %v", err)
			}
		}()
	}

	svc := service.New(users, interviews, comments, provider, events,
		service.Options{LiveWindow: cfg.LiveWindow})

	if sched.AutoCompleteEnabled {
		sweeper := &task.AutoCompleter{
			Lister:  interviews,
			Updater: svc,
			After:   sched.AutoCompleteAfter,
		}
		stopSweep, err := sweeper.Start(sched.AutoCompleteEveryMin)
		if err != nil {
			log.Fatalf("auto-complete: %v", err)
		}
		defer stopSweep()
		log.Printf("auto-complete: every %d min, after %s", sched.AutoCompleteEveryMin, sched.AutoCompleteAfter)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis: unavailable, rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				log.Printf("http: %s %s %d %s err=%v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			log.Printf("http: %s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{Timeout: cfg.RequestTimeout}))

	router.RegisterRoutes(e, router.Handlers{
		Health:     handler.NewHealthHandler(db),
		Interviews: handler.NewInterviewHandler(svc),
		Comments:   handler.NewCommentHandler(svc),
		Users:      handler.NewUserHandler(svc),
		Schedule:   handler.NewScheduleHandler(sched),
		Sessions:   handler.NewSessionHandler(stream, cfg.SessionTokenTTL),
	}, router.Options{
		JWTSecret:         cfg.JWTSecret,
		WebhookSecretHash: cfg.WebhookSecretHash,
		RateLimit:         config.LoadRateLimitConfig(),
		Cache:             config.LoadCacheConfig(),
		Redis:             rdb,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, dialect)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func openStore(cfg config.Config) (*sql.DB, database.Dialect) {
	if cfg.DBDriver == "sqlite" {
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("sqlite: %v", err)
		}
		return db, database.SQLite
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	return db, database.MySQL
}
