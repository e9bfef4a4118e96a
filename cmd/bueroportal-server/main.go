package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"

	server "github.com/bueroportal/bueroportal/internal"
	"github.com/bueroportal/bueroportal/internal/complaint"
	complaintrepo "github.com/bueroportal/bueroportal/internal/complaint/repositoryimpl"
	"github.com/bueroportal/bueroportal/internal/config"
	"github.com/bueroportal/bueroportal/internal/eventbus"
	"github.com/bueroportal/bueroportal/internal/meeting"
	meetingrepo "github.com/bueroportal/bueroportal/internal/meeting/repositoryimpl"
	"github.com/bueroportal/bueroportal/internal/notify"
	notifyrepo "github.com/bueroportal/bueroportal/internal/notify/repositoryimpl"
	"github.com/bueroportal/bueroportal/internal/task"
	taskrepo "github.com/bueroportal/bueroportal/internal/task/repositoryimpl"
	"github.com/bueroportal/bueroportal/pkg/clog"
	"github.com/bueroportal/bueroportal/pkg/storage"
)

var (
	app      = kingpin.New("bueroportal-server", "Backend of the internal office administration portal")
	dataDir  = app.Flag("data-dir", "Override the local storage directory").String()
	httpPort = app.Flag("port", "Override the HTTP port").String()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	env, err := config.LoadEnv()
	if err != nil {
		slog.Error("failed to load env", "error", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		env.StorageEnv.BaseDir = *dataDir
	}
	if *httpPort != "" {
		env.BaseEnv.HTTPPort = *httpPort
	}

	// Setup logger
	level := env.SlogLevel()
	var handler slog.Handler
	if env.Env == "local" {
		handler = clog.NewHTTPTextHandler(os.Stderr, clog.WithLevel(level))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))

	// Setup storage
	var store storage.Storage
	var localStore *storage.Local
	switch env.StorageEnv.Type {
	case "s3":
		store, err = storage.NewS3(context.Background(), env.StorageEnv.S3Bucket, env.StorageEnv.S3Prefix, env.StorageEnv.S3Region)
		if err != nil {
			slog.Error("failed to create S3 storage", "error", err)
			os.Exit(1)
		}
	default:
		localStore, err = storage.NewLocal(env.StorageEnv.BaseDir)
		if err != nil {
			slog.Error("failed to create local storage", "error", err)
			os.Exit(1)
		}
		store = localStore
	}

	// Setup event bus
	bus := eventbus.New()

	// Setup repositories
	taskRepo := taskrepo.NewYAMLRepository(store)
	complaintRepo := complaintrepo.NewYAMLRepository(store)
	meetingRepo := meetingrepo.NewYAMLRepository(store)
	subscriptionRepo := notifyrepo.NewYAMLRepository(store)

	// Setup the in-memory task store and workflow
	taskStore := task.NewStore(taskRepo, bus)
	if err := taskStore.Load(context.Background()); err != nil {
		slog.Error("failed to load tasks", "error", err)
		os.Exit(1)
	}
	gate := task.NewGate(taskStore)
	board := task.NewBoard(taskStore)

	// Setup servers
	taskServer := task.NewServer(taskStore, gate, board)
	complaintServer := complaint.NewServer(complaintRepo, bus)
	meetingServer := meeting.NewServer(meetingRepo, bus)

	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushSender := notify.NewSender(vapidEnv, subscriptionRepo)
	notifyServer := notify.NewServer(vapidEnv, subscriptionRepo)
	pushDispatcher := notify.NewDispatcher(bus, pushSender)

	srv := server.NewServer(env, taskServer, complaintServer, meetingServer, notifyServer)

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	go pushDispatcher.Start(ctx)

	// Reload the in-memory store when task documents change on disk
	// out-of-band.
	if localStore != nil {
		go func() {
			if err := taskStore.Watch(ctx, localStore.BaseDir()+"/aufgaben"); err != nil {
				slog.Error("task store watcher failed", "error", err)
			}
		}()
	}

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	// Give active connections time to finish after request contexts are
	// cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
