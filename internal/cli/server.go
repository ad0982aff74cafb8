package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"guessgame-service/internal/app"
	"guessgame-service/internal/config"
	"guessgame-service/internal/game"
	filestore "guessgame-service/internal/infra/file"
	"guessgame-service/internal/infra/memory"
	pgstore "guessgame-service/internal/infra/postgres"
	redisstore "guessgame-service/internal/infra/redis"
	transport "guessgame-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

type deps struct {
	questions app.QuestionRepository
	players   app.PlayerRepository
	closers   []func()
}

func (d *deps) close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// buildDeps picks storage from config: Postgres when configured, Redis as a
// cache and player store when configured, local files otherwise.
func buildDeps(ctx context.Context, cfg config.Config, logger *slog.Logger) (*deps, error) {
	d := &deps{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.closers = append(d.closers, func() { _ = redisClient.Close() })
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			d.close()
			return nil, err
		}
		d.closers = append(d.closers, pool.Close)
	}

	var loader memory.QuestionLoader = filestore.NewQuestionLoader(cfg.Game.QuestionsDir, cfg.Game.ImagesDir)
	if pool != nil {
		loader = pgstore.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	if redisClient != nil {
		d.questions = redisstore.NewQuestionRepository(redisClient, loader, config.TTLDuration(cfg.Redis.TTL, questionTTL))
	} else {
		d.questions = memory.NewQuestionRepository(loader, questionTTL)
	}

	switch {
	case cfg.Postgres.URL != "":
		db := openBun(cfg.Postgres.URL)
		d.closers = append(d.closers, func() { _ = db.Close() })
		d.players = pgstore.NewPlayerStore(db)
		logger.Info("players stored in postgres")
	case redisClient != nil:
		d.players = redisstore.NewPlayerStore(redisClient)
		logger.Info("players stored in redis", "addr", cfg.Redis.Addr)
	default:
		d.players = filestore.NewPlayerStore(cfg.Game.PlayersFile)
		logger.Info("players stored in file", "path", cfg.Game.PlayersFile)
	}
	return d, nil
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(pickLevel(logLevel, cfg.Log.Level))

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, logger); err != nil {
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

	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()

	session := game.NewSession(nil, nil, game.Options{
		AdvanceDelay: config.TTLDuration(cfg.Game.AdvanceDelay, game.DefaultAdvanceDelay),
		Shuffle:      cfg.Game.Shuffle,
	})
	defer session.Close()

	service := app.NewGameService(session, d.questions, d.players, cfg.Game.QuestionSet, logger)
	if err := service.Restore(ctx); err != nil {
		return err
	}
	if len(cfg.Admins) == 0 {
		logger.Warn("no admins configured; admin commands are disabled")
	}
	wsHandler := transport.NewWSHandler(service, transport.AllowList(cfg.Admins), logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service, wsHandler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return service.Run(gctx)
	})
	g.Go(func() error {
		return service.RunSnapshots(gctx, config.TTLDuration(cfg.Game.SnapshotInterval, time.Minute))
	})
	g.Go(func() error {
		logger.Info("starting game service", "port", finalPort, "set", cfg.Game.QuestionSet)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if snapErr := service.Snapshot(context.Background()); snapErr != nil {
		logger.Warn("final snapshot failed", "error", snapErr)
	}
	return err
}
