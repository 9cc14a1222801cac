package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NotAnonymousUser/Ticket-System/internal/config"
	"github.com/NotAnonymousUser/Ticket-System/internal/database"
	"github.com/NotAnonymousUser/Ticket-System/internal/notify"
	"github.com/NotAnonymousUser/Ticket-System/internal/repository/postgres"
	"github.com/NotAnonymousUser/Ticket-System/internal/router"
	"github.com/NotAnonymousUser/Ticket-System/internal/seed"
	"github.com/NotAnonymousUser/Ticket-System/internal/service"
	"github.com/NotAnonymousUser/Ticket-System/pkg/logger"

	"github.com/rs/zerolog"
)

const notifyShutdownTimeout = 15 * time.Second

func main() {
	// config + logger
	cfg := config.Load()
	l := logger.New(cfg.Env)

	// db
	pool, err := database.Open(context.Background(), cfg)
	if err != nil {
		l.Fatal().Err(err).Msg("db connect failed")
	}
	defer pool.Close()
	if err := database.Migrate(context.Background(), pool); err != nil {
		l.Fatal().Err(err).Msg("db migrate failed")
	}

	tickets := postgres.NewTicketRepo(pool)
	comments := postgres.NewCommentRepo(pool)
	users := postgres.NewUserRepo(pool)

	auth := service.NewAuthService(users, cfg.SessionSecret, cfg.SessionTTL)
	if cfg.SeedUsersPath != "" {
		if err := seed.Users(context.Background(), cfg.SeedUsersPath, auth, l); err != nil {
			l.Fatal().Err(err).Str("path", cfg.SeedUsersPath).Msg("seed users failed")
		}
	}

	// notifications
	dispatcher, closeNotify := newDispatcher(cfg, l)
	defer closeNotify()
	dispatcher.Start()

	ticketSvc := service.NewTicketService(tickets, comments, users, dispatcher, l,
		service.WithEmptyListNotFound(cfg.EmptyListNotFound))

	// http
	r := router.New(l, cfg, router.Deps{
		DB:      pool,
		Auth:    auth,
		Tickets: ticketSvc,
		Users:   users,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		l.Error().Err(err).Msg("http shutdown")
	}

	// No more requests can enqueue; let the workers finish.
	dispatcher.Stop(notifyShutdownTimeout)
	l.Info().Msg("shutdown complete")
}

// newDispatcher picks the queue and delivery channels from cfg. The
// returned func releases queue and channel connections.
func newDispatcher(cfg config.Config, l zerolog.Logger) (*notify.Dispatcher, func()) {
	var closers []func() error

	var queue notify.Queue = notify.NewMemoryQueue(cfg.Notify.QueueSize)
	if cfg.Redis.Addr != "" {
		rq, err := notify.NewRedisQueue(context.Background(), cfg.Redis)
		if err != nil {
			l.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis connect failed")
		}
		l.Info().Str("addr", cfg.Redis.Addr).Str("key", cfg.Redis.QueueKey).Msg("notification queue: redis")
		queue = rq
	}
	closers = append(closers, queue.Close)

	mailer, err := notify.NewMailer(cfg.Mail, l)
	if err != nil {
		l.Fatal().Err(err).Msg("mailer init failed")
	}

	var channels []notify.Channel
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram)
		if err != nil {
			l.Error().Err(err).Msg("telegram disabled")
		} else {
			channels = append(channels, tg)
		}
	}
	if len(cfg.Kafka.Brokers) > 0 {
		k, err := notify.NewKafka(cfg.Kafka)
		if err != nil {
			l.Error().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("kafka disabled")
		} else {
			channels = append(channels, k)
			closers = append(closers, k.Close)
		}
	}

	d := notify.NewDispatcher(queue, mailer, notify.Options{
		Workers:    cfg.Notify.Workers,
		AdminEmail: cfg.Mail.AdminEmail,
		AppURL:     cfg.AppURL,
		Channels:   channels,
	}, l)

	return d, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				l.Warn().Err(err).Msg("notify close")
			}
		}
	}
}
