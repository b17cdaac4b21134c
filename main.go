package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/olusolaa/offen-accounts/app"
	"github.com/olusolaa/offen-accounts/config"
	log "github.com/sirupsen/logrus"
)

// @title        Offen Accounts API
// @version      1.0
// @description  Admin panel and login API for offen accounts and users.

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.basic  BasicAuth
func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, reading configuration from the environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithField("context", "config").Fatal(err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.WithField("context", "app").Fatal(err)
	}

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      a.Router(),
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}

	var gracefulStop = make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGTERM)
	signal.Notify(gracefulStop, syscall.SIGINT)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sig := <-gracefulStop
		log.Infof("caught sig : %+v", sig)

		srv.RegisterOnShutdown(func() {
			a.Close()
			cancel()
		})
		shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
		defer stop()
		log.Info("ENDED ", srv.Shutdown(shutdownCtx))
	}()

	log.Infof("%s started on port %s", a.Admin().Name(), cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Info("closing the server ", err)
		if err == http.ErrServerClosed {
			<-ctx.Done()
			log.Info("Server closed")
		}
	}
}
