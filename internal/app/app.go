package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	config "github.com/swipestyle/go-backend/internal/cfg"
	v1Http "github.com/swipestyle/go-backend/internal/delivery/v1/http"
	"github.com/swipestyle/go-backend/internal/domain"
	kafkaInfra "github.com/swipestyle/go-backend/internal/infrastructure/kafka"
	"github.com/swipestyle/go-backend/internal/infrastructure/llm"
	"github.com/swipestyle/go-backend/internal/repository/features"
	"github.com/swipestyle/go-backend/internal/repository/pgdb"
	pgdbConv "github.com/swipestyle/go-backend/internal/repository/pgdb/converter"
	qdrantRepo "github.com/swipestyle/go-backend/internal/repository/qdrant"
	"github.com/swipestyle/go-backend/internal/repository/redis"
	redisConv "github.com/swipestyle/go-backend/internal/repository/redis/converter"
	"github.com/swipestyle/go-backend/internal/usecase"
	"github.com/swipestyle/go-backend/pkg/clients"
	"github.com/swipestyle/go-backend/pkg/closer"
	"github.com/swipestyle/go-backend/pkg/e"
	"github.com/swipestyle/go-backend/pkg/logger"
	"github.com/swipestyle/go-backend/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// App собирает все зависимости сервиса и управляет их жизненным циклом.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	httpSrv *v1Http.Server
	closer  *closer.Closer
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	cl := closer.NewCloser(2 * time.Second)

	db, err := initPGDB(log, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		db.Close()
		return nil
	})

	itemConv := pgdbConv.ItemConverter{}
	catConv := pgdbConv.CategoryConverter{}
	infoConv := redisConv.ItemInfoConverter{}

	itemRepo := pgdb.NewItemRepo(db.Pool, itemConv)
	categoryRepo := pgdb.NewCategoryRepo(db.Pool, catConv)
	prefRepo := pgdb.NewPreferenceRepo(db.Pool, itemConv)

	var minioClient *minio.Client
	if cfg.Features.UseMinio {
		minioClient, err = clients.NewMinIOClient(cfg)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}
	featureStore := features.NewFeatureStore(cfg.Features, cfg.Minio, minioClient, log)

	redisClient := clients.NewRedisClient(cfg.Redis)
	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	cl.Add(func(ctx context.Context) error {
		return redisClient.Client.Close()
	})
	cacheRepo := redis.NewCacheRepo(redisClient, infoConv, cfg.Redis, log)

	var vectorSearch usecase.VectorSearchRepository
	if cfg.Qdrant.Enabled {
		qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
			qdrantCancel()
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		qdrantCancel()
		cl.Add(func(ctx context.Context) error {
			return qdrantClient.Client.Close()
		})

		embRepo := qdrantRepo.NewEmbeddingRepo(qdrantClient.Client, cfg.Qdrant)
		vectorSearch = embRepo

		// Фоновая синхронизация артефакта признаков в Qdrant
		go syncFeaturesToQdrant(featureStore, embRepo, log)
	} else {
		log.Infof("Qdrant is not configured, similar items search disabled")
	}

	var events usecase.EventsInfra
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkaInfra.NewProducer(log, cfg.Kafka)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		if err := producer.EnsureTopic(10 * time.Second); err != nil {
			log.Warnf("Kafka topic check failed, events may be dropped: %v", err)
		}
		cl.Add(func(ctx context.Context) error {
			return producer.Close()
		})
		events = producer
	} else {
		log.Infof("Kafka is not configured, swipe events will not be published")
	}

	llmService := llm.NewLlmService(cfg.Llm, log)

	recommendUC := usecase.NewRecommendUC(featureStore, cfg.Recs, log)
	feedUC := usecase.NewFeedUC(itemRepo, prefRepo, recommendUC, events, db.Pool, cfg.Recs, log)
	outfitUC := usecase.NewOutfitUC(itemRepo, prefRepo, llmService, log)
	itemUC := usecase.NewItemUC(itemRepo, categoryRepo, db.Pool, featureStore, vectorSearch, log, cacheRepo)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, log)
	router.Init(feedUC, outfitUC, itemUC)

	httpSrv := v1Http.NewServer(r, cfg.Http)

	return &App{
		cfg:     cfg,
		logger:  log,
		httpSrv: httpSrv,
		closer:  cl,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до сигнала завершения или фатальной ошибки.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed: %v", err)
			errCh <- err
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.httpSrv.Stop(shutdownCtx); err != nil {
		a.logger.Errorf(err, "HTTP server shutdown error")
	} else {
		a.logger.Infof("HTTP server stopped")
	}

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Warnf("Resource cleanup error: %v", err)
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

// syncFeaturesToQdrant выгружает векторы признаков из артефакта в коллекцию Qdrant.
// Идентификатор точки — uuid-часть идентификатора вещи, сама вещь и категория лежат в payload.
func syncFeaturesToQdrant(store *features.FeatureStore, repo *qdrantRepo.EmbeddingRepo, log logger.Logger) {
	const batchSize = 256

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	all := store.All(ctx)
	if len(all) == 0 {
		return
	}

	batch := make([]domain.Embedding, 0, batchSize)
	synced := 0
	for itemID, vector := range all {
		category, pointID, ok := splitItemID(itemID)
		if !ok {
			log.Warnf("Skipping feature with malformed id: %s", itemID)
			continue
		}

		batch = append(batch, *domain.NewEmbedding(pointID, vector, domain.NewPayload(itemID, category)))
		if len(batch) == batchSize {
			if err := repo.Upsert(ctx, batch); err != nil {
				log.Warnf("Qdrant sync batch failed: %v", err)
				return
			}
			synced += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := repo.Upsert(ctx, batch); err != nil {
			log.Warnf("Qdrant sync batch failed: %v", err)
			return
		}
		synced += len(batch)
	}

	log.Infof("Synced %d feature vectors to Qdrant", synced)
}

// splitItemID разбирает идентификатор "category/uuid" на категорию и uuid точки.
func splitItemID(itemID string) (category string, pointID string, ok bool) {
	idx := strings.LastIndex(itemID, "/")
	if idx <= 0 || idx == len(itemID)-1 {
		return "", "", false
	}

	pointID = itemID[idx+1:]
	if _, err := uuid.Parse(pointID); err != nil {
		return "", "", false
	}

	return itemID[:idx], pointID, true
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.Ping(); err != nil {
		logger.Errorf(err, "failed to ping database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
