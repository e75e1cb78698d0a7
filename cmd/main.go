package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.uber.org/multierr"

	"bot/app/config"
	"bot/app/engine"
	"bot/app/flow"
	"bot/app/presenter"
	"bot/app/server"
	"bot/app/session"
	"bot/app/storage/database"
	"bot/app/telegram"
	"bot/app/walletapi"
	"bot/pkg/log"
	"bot/pkg/web"
	webware "bot/pkg/web/middleware"
)

const (
	maxRequestsAllowed    = 10000
	serverShutdownTimeout = 30 * time.Second

	backendCallTimeout = 30 * time.Second
	pollTimeoutPadding = 10 * time.Second
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		panic(err)
	}

	zlog := log.ConfigureLogger(cfg.Logging)
	var cleanup []func() error
	defer func() {
		var errs error
		for _, closeFn := range cleanup {
			errs = multierr.Append(errs, closeFn())
		}
		if errs != nil {
			log.Errorw("cleanup finished with errors", "error", errs.Error())
		}
		_ = zlog.Sync() // flush the logger
	}()

	// pick a session store
	var sessions session.Service
	if cfg.Session.Store == config.SessionStorePostgres {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			log.Fatal(err)
		}
		cleanup = append(cleanup, db.Close)
		sessions = &session.Durable{DB: db}
	} else {
		sessions = session.NewManager(cfg.Session)
	}

	walletSvc := &walletapi.Manager{
		Config: cfg.WalletBackend,
		HttpClient: &http.Client{
			Timeout: backendCallTimeout,
		},
	}

	engineSvc := engine.NewManager(sessions, flow.Default(), walletSvc)
	presenterSvc := &presenter.Manager{Engine: engineSvc}

	tgClient := &telegram.Client{
		Config: cfg.Telegram,
		HttpClient: &http.Client{
			// the client timeout must outlast the long-poll window
			Timeout: cfg.Telegram.PollTimeout + pollTimeoutPadding,
		},
	}
	bot := telegram.NewManager(cfg.Telegram, tgClient, presenterSvc)
	if err := bot.Start(); err != nil {
		log.Fatal("failed to start the telegram transport: ", err)
	}
	defer bot.Stop()

	// ops http surface
	router := newRouter()
	rest := server.Rest{
		Router:    router,
		Sessions:  sessions,
		StartedAt: time.Now(),
	}
	rest.Route()

	srv := &http.Server{
		Addr:    cfg.RestAddr,
		Handler: router,
	}
	go web.Start(srv)
	defer web.Shutdown(srv, serverShutdownTimeout)

	// wait for the program exit
	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit
}

func newRouter() chi.Router {
	router := chi.NewRouter()

	// add middleware
	router.Use(
		middleware.Throttle(maxRequestsAllowed),
		middleware.RealIP,
		webware.ZapLogger,
		webware.Recoverer,
	)

	return router
}
