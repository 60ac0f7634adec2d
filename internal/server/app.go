// Package server assembles the analyzer service from configuration and
// owns its runtime lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/storage"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/rankonai/seoscope/internal/api"
	"github.com/rankonai/seoscope/internal/cache"
	cachememory "github.com/rankonai/seoscope/internal/cache/memory"
	cachenoop "github.com/rankonai/seoscope/internal/cache/noop"
	cacheredis "github.com/rankonai/seoscope/internal/cache/redis"
	"github.com/rankonai/seoscope/internal/clock/system"
	"github.com/rankonai/seoscope/internal/config"
	"github.com/rankonai/seoscope/internal/dispatcher"
	eventsmemory "github.com/rankonai/seoscope/internal/events/memory"
	eventspubsub "github.com/rankonai/seoscope/internal/events/pubsub"
	"github.com/rankonai/seoscope/internal/fetch"
	collyfetch "github.com/rankonai/seoscope/internal/fetch/colly"
	headlessfetch "github.com/rankonai/seoscope/internal/fetch/headless"
	iduuid "github.com/rankonai/seoscope/internal/id/uuid"
	"github.com/rankonai/seoscope/internal/llm"
	llmnoop "github.com/rankonai/seoscope/internal/llm/noop"
	llmopenai "github.com/rankonai/seoscope/internal/llm/openai"
	"github.com/rankonai/seoscope/internal/logging"
	"github.com/rankonai/seoscope/internal/progress"
	progresssinks "github.com/rankonai/seoscope/internal/progress/sinks"
	queuememory "github.com/rankonai/seoscope/internal/queue/memory"
	"github.com/rankonai/seoscope/internal/seo"
	"github.com/rankonai/seoscope/internal/snapshot"
	snapshotgcs "github.com/rankonai/seoscope/internal/snapshot/gcs"
	snapshotlocal "github.com/rankonai/seoscope/internal/snapshot/local"
	snapshotmemory "github.com/rankonai/seoscope/internal/snapshot/memory"
	"github.com/rankonai/seoscope/internal/storage/cachestore"
	storagememory "github.com/rankonai/seoscope/internal/storage/memory"
	pgstore "github.com/rankonai/seoscope/internal/storage/postgres"
	"github.com/rankonai/seoscope/internal/tasks"
	"github.com/rankonai/seoscope/internal/telemetry"
	"github.com/rankonai/seoscope/internal/worker"
	"github.com/rankonai/seoscope/internal/workflow"
)

// App holds the long-lived services of one seoscope process.
type App struct {
	cfg    config.Config
	logger *zap.Logger

	apiServer *api.Server
	queue     *queuememory.Queue
	pool      *dispatcher.Pool
	inline    *dispatcher.Inline

	progressHub     *progress.Hub
	redisCache      *cacheredis.Store
	gcsClient       *storage.Client
	pubsubClient    *pubsub.Client
	pubsubPublisher *pubsub.Publisher
	history         *pgstore.HistoryStore
	tracerShutdown  func(context.Context) error
}

// Build constructs the application from configuration. External backends
// (Redis, Postgres, GCS, Pub/Sub, headless Chrome) are connected only
// when configured; everything else runs on in-process substitutes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)

	app := &App{cfg: cfg, logger: logger}
	logger.Info("building application",
		zap.Int("port", cfg.Server.Port),
		zap.String("dispatch", cfg.Workflow.Dispatch),
		zap.String("cache", cfg.Cache.Provider),
	)

	tp := telemetry.InitTracerProvider("seoscope", api.Version)
	app.tracerShutdown = tp.Shutdown

	cacheStore := app.setupCache()
	clk := system.New()

	service := workflow.NewService(
		app.setupJobStore(cacheStore),
		cacheStore,
		workflow.Config{
			ResultTTL: cfg.ResultTTL(),
			Blocklist: cfg.Fetch.BlockedDomains,
		},
		clk,
		iduuid.New(),
		logger.Named("workflow"),
	)

	analyzer := app.setupAnalyzer(clk)
	primary, providers := app.setupLLM()
	runner := tasks.NewRunner(logger.Named("tasks"))
	taskList := []tasks.Task{
		tasks.NewInsights(providers, logger.Named("insights")),
		tasks.NewSignals(),
		tasks.NewKeywords(primary, logger.Named("keywords")),
		tasks.NewMarketing(primary, logger.Named("marketing")),
		tasks.NewSocial(primary, logger.Named("social")),
		tasks.NewAISummary(primary, logger.Named("ai_summary")),
	}

	snapshots, err := app.setupSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	history, err := app.setupHistory(ctx)
	if err != nil {
		return nil, err
	}
	publisher, err := app.setupEvents(ctx)
	if err != nil {
		return nil, err
	}
	emitter, err := app.setupProgress(ctx)
	if err != nil {
		return nil, err
	}

	app.queue = queuememory.NewQueue(cfg.Workflow.QueueDepth)
	workerCfg := worker.Config{
		JobTimeout:     cfg.JobTimeout(),
		SnapshotPrefix: cfg.Snapshot.Prefix,
	}
	newWorker := func(log *zap.Logger) *worker.Worker {
		return worker.New(
			app.queue,
			service,
			analyzer,
			runner,
			taskList,
			snapshots,
			history,
			publisher,
			emitter,
			clk,
			workerCfg,
			log,
		)
	}

	var disp api.Dispatcher
	if cfg.Workflow.Dispatch == config.DispatchInline {
		app.inline = dispatcher.NewInline(
			newWorker(logger.Named("worker")),
			cfg.Workflow.Concurrency,
			cfg.AcquireTimeout(),
			logger.Named("dispatcher"),
		)
		disp = app.inline
	} else {
		workers := make([]dispatcher.Worker, 0, cfg.Workflow.Concurrency)
		for i := 0; i < cfg.Workflow.Concurrency; i++ {
			workers = append(workers, newWorker(logger.Named("worker").With(zap.Int("index", i))))
		}
		app.pool = dispatcher.NewPool(workers)
		disp = dispatcher.NewQueued(app.queue, 0)
	}

	app.apiServer = api.NewServer(
		service,
		disp,
		history,
		cacheStore,
		tasks.NewAISummary(primary, logger.Named("ai_summary")),
		clk,
		api.Config{
			RequestTimeout: cfg.RequestTimeout(),
			WorkerMode:     cfg.Workflow.Dispatch,
		},
		logger.Named("api"),
	)

	return app, nil
}

// Run starts the application and blocks until the context is canceled or
// a signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.pool != nil {
		go func() {
			a.logger.Info("worker pool started", zap.Int("workers", a.cfg.Workflow.Concurrency))
			a.pool.Run(ctx)
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}

	return a.Close(shutdownCtx)
}

// Close gracefully shuts down the application.
func (a *App) Close(ctx context.Context) error {
	if a.inline != nil {
		if err := a.inline.Shutdown(ctx); err != nil {
			a.logger.Warn("inline dispatcher shutdown failed", zap.Error(err))
		}
	}
	a.queue.Close()
	a.closeInfrastructure(ctx)
	a.closeObservability(ctx)
	a.logger.Info("shutdown complete")
	return nil
}

func (a *App) closeInfrastructure(ctx context.Context) {
	if a.progressHub != nil {
		if err := a.progressHub.Close(ctx); err != nil {
			a.logger.Warn("progress hub close failed", zap.Error(err))
		}
	}
	if a.pubsubPublisher != nil {
		a.pubsubPublisher.Stop()
	}
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			a.logger.Warn("pubsub client close failed", zap.Error(err))
		}
	}
	if a.gcsClient != nil {
		if err := a.gcsClient.Close(); err != nil {
			a.logger.Warn("gcs client close failed", zap.Error(err))
		}
	}
	if a.history != nil {
		a.history.Close()
	}
	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
}

func (a *App) closeObservability(ctx context.Context) {
	if err := a.logger.Sync(); err != nil {
		a.logger.Debug("logger sync failed", zap.Error(err))
	}
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
}

// setupCache selects the cache backend and wraps it with hit/miss metrics.
func (a *App) setupCache() cache.Store {
	var store cache.Store
	switch a.cfg.Cache.Provider {
	case "redis":
		a.redisCache = cacheredis.NewStore(cacheredis.Options{
			Addr:     a.cfg.Cache.Redis.Addr,
			Password: a.cfg.Cache.Redis.Password,
			DB:       a.cfg.Cache.Redis.DB,
		}, a.logger.Named("cache"))
		store = a.redisCache
		a.logger.Info("using redis cache", zap.String("addr", a.cfg.Cache.Redis.Addr))
	case "noop":
		store = cachenoop.NewStore()
		a.logger.Info("caching disabled")
	default:
		store = cachememory.NewStore()
		a.logger.Info("using in-memory cache")
	}
	return cache.Instrument(store)
}

// setupJobStore keeps job state in the cache so the HTTP layer and the
// workers observe the same document and expired jobs vanish on their own.
// Without a usable cache, jobs live in process memory.
func (a *App) setupJobStore(store cache.Store) workflow.JobStore {
	if a.cfg.Cache.Provider == "noop" {
		return storagememory.NewJobStore()
	}
	return cachestore.NewJobStore(store, a.cfg.JobTTL())
}

func (a *App) setupAnalyzer(clk *system.Clock) *seo.Analyzer {
	fetcher := collyfetch.New(collyfetch.Config{
		UserAgent:    a.cfg.Fetch.UserAgent,
		Timeout:      a.cfg.FetchTimeout(),
		PerHostRPS:   a.cfg.Fetch.PerHostRPS,
		PerHostBurst: a.cfg.Fetch.PerHostBurst,
	})

	var renderer fetch.Renderer
	if a.cfg.Render.Provider == "chromedp" {
		r, err := headlessfetch.NewChromedp(headlessfetch.Config{
			MaxParallel:       a.cfg.Render.MaxParallel,
			UserAgent:         a.cfg.Fetch.UserAgent,
			NavigationTimeout: a.cfg.NavTimeout(),
		})
		if err != nil {
			a.logger.Warn("headless renderer init failed", zap.Error(err))
		} else {
			renderer = r
			a.logger.Info("headless renderer enabled", zap.Int("max_parallel", a.cfg.Render.MaxParallel))
		}
	}

	return seo.NewAnalyzer(fetcher, renderer, clk, a.logger.Named("seo"))
}

// setupLLM builds one client per provider. Providers without credentials
// become placeholders the tasks report as unconfigured, so result payloads
// keep their provider keys either way.
func (a *App) setupLLM() (llm.Client, []llm.Client) {
	var openaiClient llm.Client = llmnoop.New("openai")
	if a.cfg.LLM.OpenAI.APIKey != "" {
		openaiClient = llmopenai.NewOpenAI(llmopenai.Config{
			APIKey:    a.cfg.LLM.OpenAI.APIKey,
			BaseURL:   a.cfg.LLM.OpenAI.BaseURL,
			Model:     a.cfg.LLM.OpenAI.Model,
			Timeout:   a.cfg.LLMTimeout(),
			MaxTokens: int64(a.cfg.LLM.MaxTokens),
		})
		a.logger.Info("openai provider configured", zap.String("model", a.cfg.LLM.OpenAI.Model))
	}

	var grokClient llm.Client = llmnoop.New("grok")
	if a.cfg.LLM.Grok.APIKey != "" {
		grokClient = llmopenai.NewGrok(llmopenai.Config{
			APIKey:    a.cfg.LLM.Grok.APIKey,
			BaseURL:   a.cfg.LLM.Grok.BaseURL,
			Model:     a.cfg.LLM.Grok.Model,
			Timeout:   a.cfg.LLMTimeout(),
			MaxTokens: int64(a.cfg.LLM.MaxTokens),
		})
		a.logger.Info("grok provider configured", zap.String("model", a.cfg.LLM.Grok.Model))
	}

	primary := openaiClient
	if !primary.Configured() && grokClient.Configured() {
		primary = grokClient
	}
	return primary, []llm.Client{openaiClient, grokClient}
}

func (a *App) setupSnapshots(ctx context.Context) (workflow.SnapshotStore, error) {
	switch a.cfg.Snapshot.Provider {
	case "gcs":
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client init failed: %w", err)
		}
		a.gcsClient = client
		store, err := snapshotgcs.New(client, snapshotgcs.Config{Bucket: a.cfg.Snapshot.GCSBucket})
		if err != nil {
			return nil, fmt.Errorf("gcs snapshot store init failed: %w", err)
		}
		a.logger.Info("archiving page snapshots to gcs", zap.String("bucket", a.cfg.Snapshot.GCSBucket))
		return store, nil
	case "local":
		store, err := snapshotlocal.New(snapshotlocal.Config{BaseDir: a.cfg.Snapshot.LocalDir})
		if err != nil {
			return nil, fmt.Errorf("local snapshot store init failed: %w", err)
		}
		a.logger.Info("archiving page snapshots locally", zap.String("dir", a.cfg.Snapshot.LocalDir))
		return store, nil
	case "memory":
		return snapshotmemory.NewStore(), nil
	default:
		a.logger.Info("snapshot archival disabled")
		return snapshot.Nop{}, nil
	}
}

func (a *App) setupHistory(ctx context.Context) (workflow.HistoryStore, error) {
	if a.cfg.History.Provider != "postgres" {
		a.logger.Info("job history disabled")
		return nil, nil
	}
	store, err := pgstore.NewHistoryStore(ctx, pgstore.HistoryStoreConfig{
		DSN:             a.cfg.History.DSN,
		Table:           a.cfg.History.Table,
		MaxConns:        a.cfg.History.MaxConns,
		MinConns:        a.cfg.History.MinConns,
		MaxConnLifetime: a.cfg.HistoryConnLifetime(),
	})
	if err != nil {
		return nil, fmt.Errorf("history store init failed: %w", err)
	}
	a.history = store
	a.logger.Info("postgres job history initialized", zap.String("table", a.cfg.History.Table))
	return store, nil
}

func (a *App) setupEvents(ctx context.Context) (workflow.Publisher, error) {
	switch a.cfg.Events.Provider {
	case "pubsub":
		client, err := pubsub.NewClient(ctx, a.cfg.Events.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("pubsub client init failed: %w", err)
		}
		a.pubsubClient = client
		a.pubsubPublisher = client.Publisher(a.cfg.Events.TopicName)
		a.logger.Info("publishing completion events to pub/sub",
			zap.String("project", a.cfg.Events.ProjectID),
			zap.String("topic", a.cfg.Events.TopicName),
		)
		return eventspubsub.New(a.pubsubPublisher), nil
	case "memory":
		return eventsmemory.New(), nil
	default:
		a.logger.Info("completion events disabled")
		return nil, nil
	}
}

func (a *App) setupProgress(ctx context.Context) (progress.Emitter, error) {
	if !a.cfg.Progress.Enabled {
		a.logger.Info("progress tracking disabled")
		return nil, nil
	}
	sinkList := []progress.Sink{progresssinks.NewPrometheusSink(prometheus.DefaultRegisterer)}
	if a.cfg.Progress.LogEnabled {
		sinkList = append(sinkList, progresssinks.NewLogSink(a.logger.Named("progress_log")))
	}
	a.progressHub = progress.NewHub(progress.Config{
		BaseContext: ctx,
		Logger:      a.logger.Named("progress"),
	}, sinkList...)
	return a.progressHub, nil
}
