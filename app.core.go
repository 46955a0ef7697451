package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AppProvider interface {
	Run() error
	Serve() func() error
	Stop(context.Context, context.Context) func() error
}

type App struct {
	logger         *zap.Logger
	config         *Config
	server         *http.Server
	mongoClient    *mongo.Client
	closers        []func() error
	cleanups       []func()
	queueConsumers []func(context.Context) error
}

// NewApp provides an instance of App.
func NewApp() (AppProvider, error) {
	config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime)
	if err != nil {
		return nil, fmt.Errorf("failed to setup app configuration: %s", err)
	}

	// ensure the logs folder exists and Setup the logging module.
	if err = os.MkdirAll(config.LogFolder, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create logging folder: %s", err)
	}
	clock := NewClock(config.IsProduction)
	logWriter := NewRSyncWriter(config, clock)
	logger, flusher := SetupLogging(config, logWriter, clock)
	cleanups := []func(){
		func() {
			if ferr := flusher(); ferr != nil {
				fmt.Println("error during logs flushing: ", ferr)
			}
		},
		func() {
			if cerr := logWriter.Close(); cerr != nil {
				fmt.Println("error during closing of log file: ", cerr)
			}
		},
	}

	// Setup the connection to the books document store.
	cCtx, cancel := context.WithTimeout(context.Background(), config.Mongo.ConnectTimeout)
	defer cancel()
	mongoClient, err := GetMongoClient(cCtx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo server: %s", err)
	}
	collection := mongoClient.Database(config.Mongo.Database).Collection(config.Mongo.Collection)
	mongoBookStorage := NewMongoBookStorage(logger, collection)
	if err = mongoBookStorage.EnsureIndexes(cCtx); err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create books indexes: %s", err)
	}

	// Setup the optional change mirror made of redis queues and a boltDB copy.
	var (
		queue          Queuer
		mirror         BookMirror
		closers        []func() error
		queueConsumers []func(context.Context) error
	)
	if config.Mirror.Enable {
		redisClient, rerr := GetRedisClient(config)
		if rerr != nil {
			_ = mongoClient.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to connect to redis server: %s", rerr)
		}
		boltDBClient, berr := GetBoltDBClient(config)
		if berr != nil {
			_ = redisClient.Close()
			_ = mongoClient.Disconnect(context.Background())
			return nil, fmt.Errorf("failed to connect to boltDB server: %s", berr)
		}
		queue = NewRedisQueue(redisClient)
		mirror = NewBoltBookMirror(logger, &config.BoltDB, boltDBClient)
		mirrorConsumer := NewMirrorConsumer(logger, queue, mirror)
		closers = append(closers, redisClient.Close, mirror.Close)
		queueConsumers = append(queueConsumers, func(ctx context.Context) error {
			return mirrorConsumer.Consume(ctx, CreateQueue, UpdateQueue, DeleteQueue)
		})
	}

	// Setup the api services and routing.
	bookService := NewBookService(logger, config, mongoBookStorage, mongoBookStorage, queue)
	apiService := NewAPIHandler(
		logger,
		config,
		&Statistics{
			version:   config.GitTag,
			container: IsAppRunningInDocker(),
			started:   clock.Now(),
			runtime:   runtime.Version(),
			platform:  runtime.GOOS + "/" + runtime.GOARCH,
		},
		clock,
		NewIDsHandler(),
		bookService,
		mirror,
	)

	// Use git commit in case the tag is not set.
	if config.GitTag == "" {
		apiService.stats.version = config.GitCommit
	}

	// Build the map of middlewares stacks.
	middlewaresPublic, middlewaresOps := apiService.MiddlewaresStacks()

	// Configure the endpoints with their handlers and middlewares.
	router := apiService.SetupRoutes(httprouter.New(),
		&MiddlewareMap{
			public: middlewaresPublic.Chain,
			ops:    middlewaresOps.Chain,
		},
	)
	// Wrap the router with the default http timeout handler.
	routerWithTimeout := http.TimeoutHandler(
		router,
		config.Server.RequestTimeout,
		"Timeout. Processing taking too long. Please reach out to support.")

	// Build the api server definition.
	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port),
		Handler:        routerWithTimeout,
		ReadTimeout:    config.Server.ReadTimeout,
		WriteTimeout:   config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // Max headers size : 1MB
		ConnContext:    SaveConnInContext,
	}

	return &App{
		logger:         logger,
		config:         config,
		server:         srv,
		mongoClient:    mongoClient,
		closers:        closers,
		cleanups:       cleanups,
		queueConsumers: queueConsumers,
	}, nil
}

// Run starts the api web server and a goroutine which is responsible to stop it.
func (app *App) Run() error {
	defer app.Clean()
	nCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(nCtx)

	g.Go(app.ConsumeQueues(gCtx, g))
	g.Go(app.Serve())
	g.Go(app.Stop(nCtx, gCtx))

	err := g.Wait()
	app.logger.Info("api server stopped",
		zap.String("app.host", app.config.Server.Host),
		zap.String("app.port", app.config.Server.Port),
		zap.Error(err),
	)
	return err
}

// Clean calls all registered cleanups functions.
func (app *App) Clean() {
	for _, f := range app.cleanups {
		f()
	}
}

// Serve starts the api web server. It returned error
// will be caught by the errorgroup.
func (app *App) Serve() func() error {
	return func() error {
		app.logger.Info("api server starting",
			zap.String("app.host", app.config.Server.Host),
			zap.String("app.port", app.config.Server.Port),
			zap.Bool("app.mirror", app.config.Mirror.Enable),
		)
		err := app.server.ListenAndServe()
		if err == http.ErrServerClosed {
			err = nil
		}
		return err
	}
}

// Stop listens for the group context and triggers the server graceful shutdown.
// It states the reason of its call. We proceed with a brutal shutdown if the
// the graceful did not complete successfully. We explicitly return `nil` to
// allow the errorgroup catches only the `Serve` method result.
func (app *App) Stop(nCtx, gCtx context.Context) func() error {
	return func() error {
		<-gCtx.Done()

		if nCtx.Err() != nil {
			app.logger.Info("api server stopping. reason: requested to stop")
		} else {
			app.logger.Info("api server stopping. reason: errored at running")
		}

		sCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
		defer cancel()
		err := app.server.Shutdown(sCtx)
		switch err {
		case nil, http.ErrServerClosed:
			app.logger.Info("api server graceful shutdown succeeded")
		case context.DeadlineExceeded:
			app.logger.Info("api server graceful shutdown timed out")
		default:
			app.logger.Info("api server graceful shutdown failed", zap.Error(err))
		}

		if err != nil && err != http.ErrServerClosed {
			app.logger.Info("api server going to force shutdown", zap.Error(app.server.Close()))
		}

		if err := app.mongoClient.Disconnect(sCtx); err != nil {
			app.logger.Error("failed to disconnect from mongo server", zap.Error(err))
		}
		for _, closer := range app.closers {
			if err := closer(); err != nil {
				app.logger.Error("failed to close mirror resource", zap.Error(err))
			}
		}
		return nil
	}
}

// ConsumeQueues runs all queue consumers into separate controlled goroutines.
func (app *App) ConsumeQueues(gCtx context.Context, g *errgroup.Group) func() error {
	return func() error {
		for _, consume := range app.queueConsumers {
			consume := consume
			g.Go(func() error {
				return consume(gCtx)
			})
		}
		return nil
	}
}
