package login

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/olusolaa/offen-accounts/middleware"
	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/olusolaa/offen-accounts/pkg/session"
	log "github.com/sirupsen/logrus"
	"github.com/tomasen/realip"
)

type Handler struct {
	svc   Service
	codec *session.Codec
}

func NewHandler(svc Service, codec *session.Codec) *Handler {
	return &Handler{svc: svc, codec: codec}
}

type userResponse struct {
	User *session.Session `json:"user"`
}

// postLogin godoc
// @Summary      Log in
// @Description  Exchanges an email and password for a session cookie.
// @Tags         login
// @Accept       json
// @Produce      json
// @Param        body  body      pkg.LoginReq  true  "credentials"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  pkg.response
// @Failure      401   {object}  pkg.response
// @Failure      429   {object}  pkg.response
// @Router       /api/login [post]
func (h Handler) postLogin(w http.ResponseWriter, r *http.Request) {
	var req pkg.LoginReq
	if err := render.Bind(r, &req); err != nil {
		pkg.Render(w, r, pkg.BadRequest(err))
		return
	}

	id, sess, err := h.svc.login(r.Context(), req)
	if err != nil {
		log.WithFields(log.Fields{
			"context": "login",
			"ip":      realip.FromRequest(r),
		}).Info(err)
		pkg.Render(w, r, err)
		return
	}

	cookie, err := h.codec.Cookie(id)
	if err != nil {
		pkg.Render(w, r, err)
		return
	}
	http.SetCookie(w, cookie)
	pkg.Render(w, r, userResponse{User: sess})
}

// getLogin godoc
// @Summary      Current login
// @Description  Returns the user behind the session cookie.
// @Tags         login
// @Produce      json
// @Success      200  {object}  userResponse
// @Failure      401  {object}  pkg.response
// @Router       /api/login [get]
func (h Handler) getLogin(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		pkg.Render(w, r, pkg.ErrUnauthorized)
		return
	}
	pkg.Render(w, r, userResponse{User: sess})
}

// postLogout godoc
// @Summary      Log out
// @Description  Deletes the session and expires the session cookie.
// @Tags         login
// @Success      204
// @Router       /api/logout [post]
func (h Handler) postLogout(w http.ResponseWriter, r *http.Request) {
	if id, err := h.codec.ID(r); err == nil {
		if err := h.svc.logout(r.Context(), id); err != nil {
			log.WithField("context", "logout").Error(err)
		}
	}
	http.SetCookie(w, h.codec.Expired())
	w.WriteHeader(http.StatusNoContent)
}
