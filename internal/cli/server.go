package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"contest-session-service/internal/app"
	"contest-session-service/internal/config"
	"contest-session-service/internal/content"
	"contest-session-service/internal/contest"
	"contest-session-service/internal/infra/judge0"
	"contest-session-service/internal/infra/memory"
	"contest-session-service/internal/infra/natsbus"
	pgstore "contest-session-service/internal/infra/postgres"
	redisstore "contest-session-service/internal/infra/redis"
	"contest-session-service/internal/infra/scripted"
	"contest-session-service/internal/logger"
	"contest-session-service/internal/observability"
	transport "contest-session-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the contest server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	defaultDuration := config.TTLDuration(cfg.Contest.DefaultDuration, 10*time.Minute)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	// Grace a liveness marker outlives its attempt's countdown by.
	markerGrace := config.TTLDuration(cfg.Redis.TTL, 5*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.ContestLoader = memory.NewStaticContestLoader(sampleContests(defaultDuration))
	if pool != nil {
		loader = pgstore.NewContestLoader(pool)
	}
	loader = content.NewRenderingLoader(loader, content.NewRenderer())

	cacheTTL := config.TTLDuration(cfg.Contest.CacheTTL, 10*time.Minute)
	var contests app.ContestRepository
	if redisClient != nil {
		contests = redisstore.NewContestRepository(redisClient, loader, cacheTTL)
	} else {
		contests = memory.NewContestRepository(loader, cacheTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, markerGrace)
	} else {
		sessions = memory.NewSessionStore()
	}

	var results app.ResultRepository
	switch {
	case pool != nil:
		results = pgstore.NewResultStore(pool)
	case redisClient != nil:
		results = redisstore.NewResultStore(redisClient)
	default:
		results = memory.NewResultStore()
	}
	if cfg.NATS.URL != "" {
		nc, err := natsbus.Connect(cfg.NATS.URL, log)
		if err != nil {
			return err
		}
		defer nc.Drain()
		results = natsbus.NewResultPublisher(results, nc, cfg.NATS.Subject, log)
	}

	observability.RegisterMetrics()

	service := app.NewContestService(sessions, contests, results, newGrader(cfg, log), app.ServiceOptions{
		Clock:                  contest.SystemClock(),
		Logger:                 log,
		DefaultDurationSeconds: int(defaultDuration / time.Second),
	})

	router := transport.NewRouter(
		transport.NewWSHandler(service, log, cfg.Server.AllowedOrigins),
		transport.NewLeaderboardHandler(service, log),
		observability.Handler(),
	)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting contest service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newGrader prefers a configured Judge0 instance and falls back to the scripted grader.
func newGrader(cfg config.Config, log zerolog.Logger) contest.Grader {
	if cfg.Judge0.URL == "" {
		log.Warn().Msg("judge0 not configured, using scripted grader")
		return scripted.NewGrader(500 * time.Millisecond)
	}
	return judge0.NewGrader(judge0.Config{
		URL:       cfg.Judge0.URL,
		AuthToken: cfg.Judge0.AuthToken,
		Timeout:   config.TTLDuration(cfg.Judge0.Timeout, 30*time.Second),
	})
}
