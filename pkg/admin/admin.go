// Package admin serves list/create/edit/delete pages for registered model
// views.
package admin

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi"
	"github.com/gorilla/csrf"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/tomasen/realip"
)

const (
	TemplateBootstrap3 = "bootstrap3"
	TemplateBootstrap4 = "bootstrap4"

	defaultURL          = "/admin"
	defaultBaseTemplate = "admin/base.html"
	defaultSwatch       = "default"

	csrfKeySize = 32
)

var endpointPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Options configure the admin panel.
type Options struct {
	Name         string
	URL          string // mount point, defaults to /admin
	TemplateMode string // bootstrap3 or bootstrap4
	Swatch       string // bootswatch theme, "default" for plain bootstrap
	BaseTemplate string // page layout, index.html or admin/base.html

	// CSRFKey authenticates the CSRF cookie that every POST is checked
	// against. It must be 32 bytes.
	CSRFKey      []byte
	SecureCookie bool
}

type Admin struct {
	opts       Options
	views      []ModelView
	byEndpoint map[string]ModelView
	pages      *pages
}

func New(opts Options) (*Admin, error) {
	if opts.URL == "" {
		opts.URL = defaultURL
	}
	opts.URL = strings.TrimSuffix(opts.URL, "/")
	if opts.TemplateMode == "" {
		opts.TemplateMode = TemplateBootstrap3
	}
	if opts.TemplateMode != TemplateBootstrap3 && opts.TemplateMode != TemplateBootstrap4 {
		return nil, errors.Errorf("admin: unsupported template mode %q", opts.TemplateMode)
	}
	if opts.Swatch == "" {
		opts.Swatch = defaultSwatch
	}
	if opts.BaseTemplate == "" {
		opts.BaseTemplate = defaultBaseTemplate
	}
	if len(opts.CSRFKey) != csrfKeySize {
		return nil, errors.Errorf("admin: csrf key must be %d bytes, got %d", csrfKeySize, len(opts.CSRFKey))
	}

	p, err := parsePages(opts.BaseTemplate)
	if err != nil {
		return nil, err
	}

	return &Admin{
		opts:       opts,
		byEndpoint: map[string]ModelView{},
		pages:      p,
	}, nil
}

func (a *Admin) Name() string {
	return a.opts.Name
}

// AddView registers v. Endpoints must be unique.
func (a *Admin) AddView(v ModelView) error {
	endpoint := v.Endpoint()
	if !endpointPattern.MatchString(endpoint) {
		return errors.Errorf("admin: invalid endpoint %q for view %s", endpoint, v.Name())
	}
	if _, ok := a.byEndpoint[endpoint]; ok {
		return errors.Errorf("admin: endpoint %q is already registered", endpoint)
	}
	a.views = append(a.views, v)
	a.byEndpoint[endpoint] = v
	return nil
}

// Views returns the registered views in registration order.
func (a *Admin) Views() []ModelView {
	out := make([]ModelView, len(a.views))
	copy(out, a.views)
	return out
}

// StylesheetURL is the bootstrap stylesheet for the configured template mode
// and swatch.
func (a *Admin) StylesheetURL() string {
	switch a.opts.TemplateMode {
	case TemplateBootstrap4:
		if a.opts.Swatch == defaultSwatch {
			return "https://cdn.jsdelivr.net/npm/bootstrap@4.6.2/dist/css/bootstrap.min.css"
		}
		return fmt.Sprintf("https://cdn.jsdelivr.net/npm/bootswatch@4.6.2/dist/%s/bootstrap.min.css", a.opts.Swatch)
	default:
		if a.opts.Swatch == defaultSwatch {
			return "https://cdn.jsdelivr.net/npm/bootstrap@3.4.1/dist/css/bootstrap.min.css"
		}
		return fmt.Sprintf("https://cdn.jsdelivr.net/npm/bootswatch@3.4.1/%s/bootstrap.min.css", a.opts.Swatch)
	}
}

// Router serves the admin pages. It is meant to be mounted at Options.URL.
// POST requests without a valid CSRF token are rejected with 403.
func (a *Admin) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(csrf.Protect(a.opts.CSRFKey,
		csrf.Path(a.opts.URL),
		csrf.Secure(a.opts.SecureCookie),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	))

	r.Get("/", a.home)
	r.Route("/{view}", func(r chi.Router) {
		r.Use(a.resolveView)
		r.Get("/", a.list)
		r.Get("/new/", a.newForm)
		r.Post("/new/", a.create)
		r.Get("/edit/", a.editForm)
		r.Post("/edit/", a.update)
		r.Post("/delete/", a.remove)
	})

	return r
}

func (a *Admin) viewURL(v ModelView, action string) string {
	u := a.opts.URL + "/" + v.Endpoint() + "/"
	if action != "" {
		u += action + "/"
	}
	return u
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	log.WithFields(log.Fields{
		"context": "admin",
		"path":    r.URL.Path,
		"ip":      realip.FromRequest(r),
		"origin":  r.Header.Get("Origin"),
	}).WithError(csrf.FailureReason(r)).Warn("rejected request without valid csrf token")
	http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
}
