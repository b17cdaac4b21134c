// Package app is the composition root: it builds every long lived object of
// the service from a Config and owns their lifecycle.
package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/olusolaa/offen-accounts/config"
	_ "github.com/olusolaa/offen-accounts/docs"
	middleware2 "github.com/olusolaa/offen-accounts/middleware"
	"github.com/olusolaa/offen-accounts/migrations"
	"github.com/olusolaa/offen-accounts/pkg/account"
	"github.com/olusolaa/offen-accounts/pkg/admin"
	"github.com/olusolaa/offen-accounts/pkg/keys"
	"github.com/olusolaa/offen-accounts/pkg/login"
	"github.com/olusolaa/offen-accounts/pkg/session"
	"github.com/olusolaa/offen-accounts/pkg/user"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

type App struct {
	cfg      *config.Config
	db       *sqlx.DB
	rd       *redis.Client
	admin    *admin.Admin
	router   http.Handler
	closeFns []func()
}

// New connects to the database and redis, applies migrations and wires the
// admin panel and the API.
func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	db, err := config.NewDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.onClose("db", db.Close)

	if err := migrations.Up(db.DB, db.DriverName()); err != nil {
		a.Close()
		return nil, err
	}

	rd, err := config.NewRedis(cfg.RedisURL)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.rd = rd
	a.onClose("redis", rd.Close)

	encrypter, err := NewEncrypter(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := Deps{
		Config:    cfg,
		Accounts:  account.NewRepository(db),
		Users:     user.NewRepository(db),
		Sessions:  session.NewRedisStore(rd, cfg.SessionTTL),
		Encrypter: encrypter,
	}

	a.admin, err = NewAdmin(deps)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.router = NewRouter(deps, a.admin)

	return a, nil
}

func (a *App) onClose(name string, fn func() error) {
	a.closeFns = append(a.closeFns, func() {
		log.Infof("closing %s conn", name)
		if err := fn(); err != nil {
			log.WithFields(log.Fields{
				"context": "close_" + name + "_conn",
				"method":  "app/close",
			}).Error(err)
		}
	})
}

func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) Admin() *admin.Admin {
	return a.admin
}

// Close releases all connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
	a.closeFns = nil
}

// Deps are the collaborators the router and the admin panel are built from.
type Deps struct {
	Config    *config.Config
	Accounts  account.Repository
	Users     user.Repository
	Sessions  session.Store
	Encrypter keys.Encrypter
}

// NewEncrypter selects AWS KMS when a key is configured and falls back to a
// secretbox key derived from the session secret.
func NewEncrypter(cfg *config.Config) (keys.Encrypter, error) {
	if !cfg.KMS.Enabled() {
		log.WithField("context", "keys").Warn("KMS_ENCRYPTION_KEY_ARN not set, encrypting private keys locally")
		return keys.NewBoxKeyring(cfg.SessionSecret)
	}
	client, err := keys.NewKMSClient(cfg.KMS.Region)
	if err != nil {
		return nil, err
	}
	return keys.NewKMSKeyring(cfg.SessionSecret, client, cfg.KMS.KeyARN)
}

const csrfKeyPurpose = "offen accounts admin csrf"

// NewAdmin builds the admin panel and registers the account and user views.
func NewAdmin(deps Deps) (*admin.Admin, error) {
	cfg := deps.Config.Admin
	csrfKey, err := keys.DeriveKey(deps.Config.SessionSecret, csrfKeyPurpose, 32)
	if err != nil {
		return nil, err
	}
	panel, err := admin.New(admin.Options{
		Name:         cfg.Name,
		TemplateMode: cfg.TemplateMode,
		Swatch:       cfg.Swatch,
		BaseTemplate: cfg.BaseTemplate,
		CSRFKey:      csrfKey,
		SecureCookie: deps.Config.CookieSecure,
	})
	if err != nil {
		return nil, err
	}

	views := []admin.ModelView{
		account.NewView(deps.Accounts, deps.Encrypter, nil),
		user.NewView(deps.Users, deps.Accounts, 0),
	}
	for _, v := range views {
		if err := panel.AddView(v); err != nil {
			return nil, errors.Wrapf(err, "app: error registering %s view", v.Name())
		}
	}
	return panel, nil
}

// NewRouter mounts the admin panel and the API.
func NewRouter(deps Deps, panel *admin.Admin) http.Handler {
	r := chi.NewRouter()
	timeoutDuration := time.Second * 25

	c := cors.New(cors.Options{
		AllowOriginFunc:  func(r *http.Request, origin string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(func(handler http.Handler) http.Handler {
		return http.TimeoutHandler(handler, timeoutDuration, `{"status":"timeout error", "message":"unable to process request at the moment. Try again"}`)
	})
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("Welcome to offen accounts"))
		if err != nil {
			return
		}
	})

	r.Mount("/swagger", httpSwagger.WrapHandler)

	adminCfg := deps.Config.Admin
	r.Group(func(r chi.Router) {
		if adminCfg.Protected() {
			r.Use(middleware2.BasicAuth(adminCfg.Name, middleware2.StaticCredentials(adminCfg.Username, adminCfg.Password)))
		} else {
			log.WithField("context", "admin").Warn("ADMIN_USERNAME/ADMIN_PASSWORD not set, admin panel is unprotected")
		}
		r.Mount("/admin", panel.Router())
	})

	codec := session.NewCodec(deps.Config.SessionSecret, deps.Config.SessionTTL, deps.Config.CookieSecure)
	r.Route("/api", func(r chi.Router) {
		r.Use(c.Handler)
		r.Use(middleware.AllowContentType("application/json"))

		loginRouter := login.NewResource(deps.Users, deps.Accounts, deps.Sessions, codec)
		accountRouter := account.NewResource(deps.Accounts, deps.Encrypter, user.Memberships(deps.Users))

		r.Mount("/", loginRouter.Router())
		r.With(middleware2.RequireSession(deps.Sessions, codec)).Mount("/accounts", accountRouter.Router())
	})

	return r
}
