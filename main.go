package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	intconfig "railway/internal/config"
	api "railway/internal/http"
	"railway/internal/http/handlers"
	"railway/internal/notify"
	"railway/internal/repositories"
	"railway/internal/reservation"
	"railway/internal/services"
	"railway/internal/utils"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}
	utils.ConfigureLogger(env.Log.Level, env.Log.Format)
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}
	loc := env.Location()

	db, err := intconfig.ConnectDB(env)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer intconfig.CloseDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	directory := repositories.DirectoryRepo{DB: db}
	profiles := repositories.ProfileRepo{DB: db}

	wmLogger := notify.NewLogrusAdapter(logrus.StandardLogger())
	bus := notify.NewBus(wmLogger)
	defer bus.Close()

	events, err := notify.NewRouter(bus, notify.EmailNotifier{
		Mailer:     notify.NewMailer(env.SMTP),
		Recipients: notify.DirectoryRecipients(directory),
	}, wmLogger)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create event router")
	}

	if env.Auth.UserSecret == "change-me-user" || env.Auth.EmployeeSecret == "change-me-employee" {
		logrus.Warn("using default JWT secrets; set JWT_SECRET and JWT_EMPLOYEE_SECRET")
	}

	r := api.NewRouter(env, handlers.App{
		Engine:   reservation.NewEngine(repositories.ReservationStore{DB: db}, loc),
		Fares:    repositories.FareRepo{DB: db},
		People:   directory,
		Trains:   repositories.TrainRepo{DB: db},
		History:  repositories.HistoryRepo{DB: db},
		Payments: profiles,
		Profiles: profiles,
		Accounts: directory,
		Tokens: services.TokenService{
			UserSecret:     []byte(env.Auth.UserSecret),
			EmployeeSecret: []byte(env.Auth.EmployeeSecret),
			TTL:            env.Auth.TokenTTL,
		},
		Events:   bus,
		Location: loc,
		DB:       db,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return events.Run(gctx)
	})
	g.Go(func() error {
		// gochannel drops messages published before its subscribers exist.
		select {
		case <-events.Running():
		case <-gctx.Done():
			return nil
		}
		logrus.Infof("server listening on %s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return events.Close()
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Fatal("server stopped with error")
	}
	logrus.Info("server stopped")
}
