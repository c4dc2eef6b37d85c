package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
	"quizmaster-service/internal/infra/postgres"
	pgmigrations "quizmaster-service/internal/infra/postgres/migrations"
	infraredis "quizmaster-service/internal/infra/redis"
	"quizmaster-service/internal/seed"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestSubmitAttemptEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)
	if err := seed.Load(ctx, store); err != nil {
		t.Fatalf("seed: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	service := app.NewQuizService(
		store,
		infraredis.NewAttemptStore(redisClient, 5*time.Minute),
		app.WithQuizLoader(infraredis.NewQuizCache(redisClient, store, 5*time.Minute)),
	)

	user, err := service.ResolveUser(ctx, "3")
	if err != nil || user == nil {
		t.Fatalf("resolve user: %v", err)
	}

	state, _, err := service.StartAttempt(ctx, "3")
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	if n, _ := redisClient.Exists(ctx, "quiz:3").Result(); n != 1 {
		t.Fatalf("expected quiz cached in redis")
	}

	for i, option := range []int{2, 3, 0} {
		if _, err := service.SelectAnswer(ctx, state.AttemptID, i, option); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
	}
	state, err = service.Submit(ctx, state.AttemptID, user)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if state.Result == nil || state.Result.Score != 3 || !state.Result.Persisted {
		t.Fatalf("expected persisted 3/3, got %+v", state.Result)
	}

	scores, err := service.ScoresByQuiz(ctx, "3")
	if err != nil {
		t.Fatalf("scores by quiz: %v", err)
	}
	if len(scores) != 3 || scores[0].Score != 3 || scores[len(scores)-1].Score != 2 {
		t.Fatalf("expected descending scores, got %+v", scores)
	}

	board, err := service.Leaderboard(ctx, "")
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 3 || board[0].Username != "Alex Johnson" {
		t.Fatalf("expected Alex to lead, got %+v", board)
	}

	if _, err := store.InsertScore(ctx, domain.NewScore{QuizID: "1", UserID: "ghost", Score: 1, TotalQuestions: 3}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if _, err := store.InsertScore(ctx, domain.NewScore{QuizID: "empty", UserID: "2"}); err != nil {
		t.Fatalf("expected zero-question score to be stored, got %v", err)
	}
	empty, err := store.ListScoresByQuiz(ctx, "empty")
	if err != nil {
		t.Fatalf("list empty quiz scores: %v", err)
	}
	if len(empty) != 1 || empty[0].TotalQuestions != 0 || empty[0].Username != "Jane Smith" {
		t.Fatalf("unexpected zero-question scores: %+v", empty)
	}
}

func TestCreateQuizRoundTripsThroughPostgres(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateDB(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := postgres.NewStore(pool)
	if err := seed.Load(ctx, store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Seeding twice must not duplicate quizzes or users.
	if err := store.SaveQuiz(ctx, seed.Quizzes()[0]); err != nil {
		t.Fatalf("reseed quiz: %v", err)
	}

	correct := 1
	service := app.NewQuizService(store, nil)
	quiz, err := service.CreateQuiz(ctx, &domain.User{ID: "1"}, domain.QuizDraft{
		Title:       "Databases",
		Description: "SQL basics",
		Questions: []domain.QuestionDraft{
			{Prompt: "Which clause filters rows?", Options: []string{"ORDER BY", "WHERE", "GROUP BY", "LIMIT"}, CorrectAnswer: &correct},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	loaded, err := store.FindQuizByID(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("find quiz: %v", err)
	}
	if loaded.Title != "Databases" || len(loaded.Questions) != 1 || loaded.Questions[0].CorrectAnswer != 1 {
		t.Fatalf("unexpected quiz: %+v", loaded)
	}

	all, err := store.ListQuizzes(ctx)
	if err != nil {
		t.Fatalf("list quizzes: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 quizzes, got %d", len(all))
	}

	mine, err := service.QuizzesByCreator(ctx, "1")
	if err != nil {
		t.Fatalf("quizzes by creator: %v", err)
	}
	if len(mine) != 2 || mine[1].ID != quiz.ID {
		t.Fatalf("unexpected creator quizzes: %+v", mine)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
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
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
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

func migrateDB(t *testing.T, ctx context.Context, dsn string) {
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
