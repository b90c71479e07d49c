package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"procurement/internal/config"
	"procurement/internal/controller"
	"procurement/internal/filestore"
	"procurement/internal/push"
	"procurement/internal/repository"
	"procurement/internal/router"
	"procurement/internal/service"
)

type App struct {
	repo       *repository.Repository
	files      *filestore.Store
	service    *service.Service
	controller *controller.Controller
	log        zerolog.Logger
	stopSig    chan os.Signal
	cfg        *config.Config

	Done chan struct{}
}

type option func(*App)

func WithConfig(cfg *config.Config) option {
	return func(app *App) {
		app.cfg = cfg
	}
}

func NewApp(opts ...option) (*App, error) {
	var err error

	app := &App{
		stopSig: make(chan os.Signal, 2),
		Done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.cfg == nil {
		cfg, err := config.NewConfig()
		if err != nil {
			return nil, err
		}
		app.cfg = cfg
	}

	app.log, err = newLogger(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.repo, err = repository.NewRepository(nil, &app.cfg.PostgresConfig)
	if err != nil {
		return nil, err
	}

	app.files, err = filestore.NewStore(app.cfg.FileStoreConfig, app.log)
	if err != nil {
		return nil, err
	}

	pusher := push.NewLogPusher(app.log)
	app.service = service.NewService(app.repo, app.files, pusher, app.log)
	app.controller = controller.NewController(app.service, app.log)

	return app, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("app.newLogger: %w", err)
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger(), nil
}

func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		signal.Notify(app.stopSig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		sig := <-app.stopSig
		app.log.Info().Str("signal", sig.String()).Msg("received signal")
		cancel()
	}()

	server := http.Server{
		Addr:         app.cfg.ServerAddress,
		Handler:      router.NewRouter(app.controller),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			app.log.Error().Err(err).Msg("http server error")
		}
	}()

	app.log.Info().Str("address", app.cfg.ServerAddress).Msg("server started, listening for connections")
	<-ctx.Done()

	timeout, tcancel := context.WithTimeout(context.Background(), time.Second*10)
	defer tcancel()
	app.log.Info().Msg("shutting down http server")
	server.Shutdown(timeout)

	app.log.Info().Msg("closing repository")
	err := app.repo.Close()
	if err != nil {
		app.log.Error().Err(err).Msg("repository closing error")
	}

	close(app.Done)
	app.log.Info().Msg("exiting app")
}
