package admin

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/gobuffalo/validate"
	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const contextKeyView contextKey = "view"

func (a *Admin) resolveView(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, ok := a.byEndpoint[chi.URLParam(r, "view")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyView, v)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func viewFrom(r *http.Request) ModelView {
	return r.Context().Value(contextKeyView).(ModelView)
}

func (a *Admin) home(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, pageHome, a.newPage(a.opts.Name, nil))
}

func (a *Admin) list(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	records, err := v.List(r.Context())
	if err != nil {
		a.fail(w, r, err, "error listing records")
		return
	}

	p := a.newPage(v.Name(), v)
	p.Columns = v.Columns()
	p.Records = records
	p.ColSpan = len(p.Columns) + 1
	a.render(w, r, http.StatusOK, pageList, p)
}

func (a *Admin) newForm(w http.ResponseWriter, r *http.Request) {
	a.renderForm(w, r, viewFrom(r), "", url.Values{}, nil, http.StatusOK)
}

func (a *Admin) editForm(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	id := r.URL.Query().Get("id")
	values, err := v.Get(r.Context(), id)
	if err != nil {
		a.fail(w, r, err, "error loading record")
		return
	}
	a.renderForm(w, r, v, id, values, nil, http.StatusOK)
}

func (a *Admin) create(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := v.Create(r.Context(), r.PostForm); err != nil {
		a.formFailure(w, r, v, "", err)
		return
	}
	log.WithFields(log.Fields{"context": "admin", "view": v.Endpoint()}).Info("record created")
	http.Redirect(w, r, a.viewURL(v, ""), http.StatusSeeOther)
}

func (a *Admin) update(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := r.URL.Query().Get("id")
	if err := v.Update(r.Context(), id, r.PostForm); err != nil {
		a.formFailure(w, r, v, id, err)
		return
	}
	log.WithFields(log.Fields{"context": "admin", "view": v.Endpoint(), "id": id}).Info("record updated")
	http.Redirect(w, r, a.viewURL(v, ""), http.StatusSeeOther)
}

func (a *Admin) remove(w http.ResponseWriter, r *http.Request) {
	v := viewFrom(r)
	id := r.PostFormValue("id")
	if err := v.Delete(r.Context(), id); err != nil {
		a.fail(w, r, err, "error deleting record")
		return
	}
	log.WithFields(log.Fields{"context": "admin", "view": v.Endpoint(), "id": id}).Info("record deleted")
	http.Redirect(w, r, a.viewURL(v, ""), http.StatusSeeOther)
}

func (a *Admin) formFailure(w http.ResponseWriter, r *http.Request, v ModelView, id string, err error) {
	var verr *validate.Errors
	if errors.As(err, &verr) {
		values := r.PostForm
		a.renderForm(w, r, v, id, values, verr, http.StatusUnprocessableEntity)
		return
	}
	a.fail(w, r, err, "error saving record")
}

func (a *Admin) renderForm(w http.ResponseWriter, r *http.Request, v ModelView, id string, values url.Values, verr *validate.Errors, status int) {
	isNew := id == ""
	fields, err := v.Fields(r.Context(), isNew)
	if err != nil {
		a.fail(w, r, err, "error loading form")
		return
	}

	title := "Create " + v.Name()
	action := a.viewURL(v, "new")
	if !isNew {
		title = "Edit " + v.Name()
		action = a.viewURL(v, "edit") + "?id=" + url.QueryEscape(id)
	}

	p := a.newPage(title, v)
	p.Action = action
	p.RecordID = id
	p.IsNew = isNew
	for _, f := range fields {
		state := fieldState{Field: f, Selected: map[string]bool{}}
		if f.Type != FieldPassword {
			state.Value = values.Get(f.Name)
		}
		for _, s := range values[f.Name] {
			state.Selected[s] = true
		}
		if verr != nil {
			state.Errors = verr.Get(f.Name)
		}
		p.Fields = append(p.Fields, state)
	}
	if verr != nil {
		for key, msgs := range verr.Errors {
			if !p.hasField(key) {
				p.FormErrors = append(p.FormErrors, msgs...)
			}
		}
	}

	a.render(w, r, status, pageForm, p)
}

func (a *Admin) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, pkg.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	log.WithFields(log.Fields{
		"context": "admin",
		"path":    r.URL.Path,
	}).WithError(err).Error(msg)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
