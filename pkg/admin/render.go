package admin

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed templates
var templateFS embed.FS

const (
	pageHome = "home.html"
	pageList = "list.html"
	pageForm = "form.html"
)

type pages struct {
	base string
	sets map[string]*template.Template
}

// parsePages builds one template set per page, each holding all layouts so
// that the configured base template can wrap the page content.
func parsePages(base string) (*pages, error) {
	p := &pages{base: base, sets: map[string]*template.Template{}}
	for _, name := range []string{pageHome, pageList, pageForm} {
		t, err := template.New(name).ParseFS(templateFS, "templates/layouts/*.html", "templates/pages/"+name)
		if err != nil {
			return nil, errors.Wrapf(err, "admin: error parsing %s", name)
		}
		if t.Lookup(base) == nil {
			return nil, errors.Errorf("admin: unknown base template %q", base)
		}
		p.sets[name] = t
	}
	return p, nil
}

type navItem struct {
	Name   string
	URL    string
	Active bool
}

type fieldState struct {
	Field
	Value    string
	Selected map[string]bool
	Errors   []string
}

type page struct {
	AdminName  string
	AdminURL   string
	Stylesheet string
	Nav        []navItem
	Title      string
	CSRFField  template.HTML

	ViewName string
	ViewURL  string
	NewURL   string
	EditURL  string
	DelURL   string

	Columns []Column
	Records []Record
	ColSpan int // columns plus the action column

	Action     string
	RecordID   string
	IsNew      bool
	Fields     []fieldState
	FormErrors []string
}

func (p *page) hasField(name string) bool {
	for _, f := range p.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func (a *Admin) newPage(title string, current ModelView) *page {
	p := &page{
		AdminName:  a.opts.Name,
		AdminURL:   a.opts.URL + "/",
		Stylesheet: a.StylesheetURL(),
		Title:      title,
	}
	for _, v := range a.views {
		p.Nav = append(p.Nav, navItem{
			Name:   v.Name(),
			URL:    a.viewURL(v, ""),
			Active: current != nil && v.Endpoint() == current.Endpoint(),
		})
	}
	if current != nil {
		p.ViewName = current.Name()
		p.ViewURL = a.viewURL(current, "")
		p.NewURL = a.viewURL(current, "new")
		p.EditURL = a.viewURL(current, "edit")
		p.DelURL = a.viewURL(current, "delete")
	}
	return p
}

func (a *Admin) render(w http.ResponseWriter, r *http.Request, status int, name string, p *page) {
	p.CSRFField = csrf.TemplateField(r)

	var buf bytes.Buffer
	if err := a.pages.sets[name].ExecuteTemplate(&buf, a.pages.base, p); err != nil {
		log.WithFields(log.Fields{
			"context":  "admin",
			"template": name,
			"path":     r.URL.Path,
		}).WithError(err).Error("error rendering template")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
