package account

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/olusolaa/offen-accounts/middleware"
	"github.com/olusolaa/offen-accounts/pkg"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type accountResponse struct {
	AccountID string `json:"accountId"`
	Name      string `json:"name"`
	PublicKey string `json:"publicKey"`
}

type keyResponse struct {
	AccountID  string `json:"accountId"`
	PrivateKey string `json:"privateKey"`
}

// get godoc
// @Summary      Get an account
// @Tags         accounts
// @Produce      json
// @Param        accountID  path      string  true  "account id"
// @Success      200        {object}  accountResponse
// @Failure      401        {object}  pkg.response
// @Failure      403        {object}  pkg.response
// @Failure      404        {object}  pkg.response
// @Router       /api/accounts/{accountID} [get]
func (h Handler) get(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		pkg.Render(w, r, pkg.ErrUnauthorized)
		return
	}
	a, err := h.svc.get(r.Context(), sess, chi.URLParam(r, "accountID"))
	if err != nil {
		pkg.Render(w, r, err)
		return
	}
	pkg.Render(w, r, accountResponse{AccountID: a.AccountID, Name: a.Name, PublicKey: a.PublicKey})
}

// key godoc
// @Summary      Get the decrypted private key of an account
// @Tags         accounts
// @Produce      json
// @Param        accountID  path      string  true  "account id"
// @Success      200        {object}  keyResponse
// @Failure      401        {object}  pkg.response
// @Failure      403        {object}  pkg.response
// @Failure      404        {object}  pkg.response
// @Router       /api/accounts/{accountID}/key [get]
func (h Handler) key(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		pkg.Render(w, r, pkg.ErrUnauthorized)
		return
	}
	accountID := chi.URLParam(r, "accountID")
	key, err := h.svc.privateKey(r.Context(), sess, accountID)
	if err != nil {
		if pkg.StatusFor(err) == http.StatusInternalServerError {
			log.WithFields(log.Fields{
				"context":   "account_key",
				"accountId": accountID,
			}).Error(err)
		}
		pkg.Render(w, r, err)
		return
	}
	pkg.Render(w, r, keyResponse{AccountID: accountID, PrivateKey: string(key)})
}
