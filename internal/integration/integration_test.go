package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"contest-session-service/internal/app"
	"contest-session-service/internal/contest"
	"contest-session-service/internal/domain"
	pgstore "contest-session-service/internal/infra/postgres"
	pgmigrations "contest-session-service/internal/infra/postgres/migrations"
	infraredis "contest-session-service/internal/infra/redis"
	"contest-session-service/internal/infra/scripted"
)

func TestContestAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewContestLoader(pool)
	if err := loader.SaveContest(ctx, sampleContest()); err != nil {
		t.Fatalf("seed contest: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	contests := infraredis.NewContestRepository(redisClient, loader, 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	results := pgstore.NewResultStore(pool)
	service := app.NewContestService(sessions, contests, results, scripted.NewGrader(0), app.ServiceOptions{
		Logger: zerolog.Nop(),
	})

	alice := startAttempt(t, ctx, service, "u1", "Alice")
	if err := alice.Controller.MarkSolved(); err != nil {
		t.Fatalf("mark solved: %v", err)
	}
	if err := alice.Controller.Advance(30); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := alice.Controller.SubmitContest(); err != nil {
		t.Fatalf("submit contest: %v", err)
	}

	bob := startAttempt(t, ctx, service, "u2", "Bob")
	if _, err := bob.Controller.Run(ctx, "def twoSum(nums, target):\n    return [0, 1]", "python"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, err := bob.Controller.Submit(ctx, "def twoSum(nums, target):\n    return [0, 1]", "python"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := bob.Controller.Advance(10); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := bob.Controller.SubmitContest(); err != nil {
		t.Fatalf("submit contest: %v", err)
	}

	if exists, err := redisClient.Exists(ctx, "contest:attempt:"+bob.ID).Result(); err != nil || exists != 1 {
		t.Fatalf("expected liveness marker for bob, exists=%d err=%v", exists, err)
	}
	service.End(ctx, bob.ID)
	if exists, _ := redisClient.Exists(ctx, "contest:attempt:"+bob.ID).Result(); exists != 0 {
		t.Fatalf("expected liveness marker removed")
	}

	lb, err := service.Leaderboard(ctx, "weekly-1")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", lb.Entries)
	}
	// Equal answered counts: less time used ranks first.
	if lb.Entries[0].UserID != "u2" || lb.Entries[0].TimeUsedSeconds != 10 || lb.Entries[1].UserID != "u1" {
		t.Fatalf("expected bob leading, got %+v", lb.Entries)
	}
}

type grantingCamera struct{}

func (grantingCamera) RequestVideoPermission(context.Context) (contest.MediaStream, error) {
	return nil, nil
}

func startAttempt(t *testing.T, ctx context.Context, service *app.ContestService, userID, name string) *app.Attempt {
	t.Helper()
	attempt, err := service.Start(ctx, "weekly-1", userID, name, grantingCamera{})
	if err != nil {
		t.Fatalf("start %s: %v", name, err)
	}
	state, err := attempt.Controller.Begin(ctx)
	if err != nil || state != domain.CameraGranted {
		t.Fatalf("begin %s: state=%s err=%v", name, state, err)
	}
	return attempt
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "contest", "POSTGRES_PASSWORD": "contestpass", "POSTGRES_DB": "contestdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://contest:contestpass@%s:%s/contestdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func sampleContest() domain.Contest {
	return domain.Contest{
		ID:              "weekly-1",
		Title:           "Weekly Contest",
		DurationSeconds: 600,
		Questions: []domain.Question{
			{ID: "two-sum", Title: "Two Sum", Difficulty: domain.DifficultyEasy},
			{ID: "longest-substring", Title: "Longest Substring", Difficulty: domain.DifficultyMedium},
		},
		TestCases: map[string][]domain.TestCase{
			"two-sum": {{ID: "t1", QuestionID: "two-sum", Input: "2 7 11 15\n9", ExpectedOutput: "0 1"}},
		},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
