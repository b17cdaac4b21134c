package login

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/olusolaa/offen-accounts/pkg/account"
	"github.com/olusolaa/offen-accounts/pkg/session"
	"github.com/olusolaa/offen-accounts/pkg/user"
	"golang.org/x/crypto/bcrypt"
)

type stubUsers struct {
	user.Repository
	users []user.User
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, pkg.ErrNotFound
}

type stubAccounts struct {
	account.Repository
	accounts []account.Account
}

func (s *stubAccounts) FindByIDs(_ context.Context, ids []string) ([]account.Account, error) {
	var out []account.Account
	for _, a := range s.accounts {
		for _, id := range ids {
			if id == a.AccountID {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

type memSessions struct {
	sessions map[string]session.Session
	next     int
}

func (m *memSessions) Create(_ context.Context, s session.Session) (string, error) {
	m.next++
	id := strings.Repeat("x", m.next)
	m.sessions[id] = s
	return id, nil
}

func (m *memSessions) Get(_ context.Context, id string) (*session.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, pkg.ErrNotFound
	}
	return &s, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

type fixture struct {
	handler  http.Handler
	sessions *memSessions
	codec    *session.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("develop"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	users := &stubUsers{users: []user.User{
		{UserID: "u1", Email: "develop@offen.dev", HashedPassword: string(hashed), AccountIDs: []string{"a1"}},
	}}
	accounts := &stubAccounts{accounts: []account.Account{{AccountID: "a1", Name: "offen"}}}
	sessions := &memSessions{sessions: map[string]session.Session{}}
	codec := session.NewCodec("s3cr3t", time.Hour, false)

	return &fixture{
		handler:  NewResource(users, accounts, sessions, codec).Router(),
		sessions: sessions,
		codec:    codec,
	}
}

func (f *fixture) do(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func authCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	return nil
}

func TestPostLogin(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "valid credentials", body: `{"username":"develop@offen.dev","password":"develop"}`, want: http.StatusOK},
		{name: "wrong password", body: `{"username":"develop@offen.dev","password":"nope"}`, want: http.StatusUnauthorized},
		{name: "unknown user", body: `{"username":"other@offen.dev","password":"develop"}`, want: http.StatusUnauthorized},
		{name: "invalid body", body: `{"username":`, want: http.StatusBadRequest},
		{name: "missing password", body: `{"username":"develop@offen.dev"}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			w := f.do(http.MethodPost, "/login", tt.body)

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
			cookie := authCookie(w)
			if tt.want != http.StatusOK {
				if cookie != nil {
					t.Error("cookie set on failed login")
				}
				return
			}
			if cookie == nil || !cookie.HttpOnly {
				t.Fatalf("auth cookie = %+v", cookie)
			}

			var body struct {
				User session.Session `json:"user"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body.User.UserID != "u1" || len(body.User.Accounts) != 1 || body.User.Accounts[0].AccountName != "offen" {
				t.Errorf("user = %+v", body.User)
			}
			if len(f.sessions.sessions) != 1 {
				t.Errorf("got %d sessions, want 1", len(f.sessions.sessions))
			}
		})
	}
}

func TestPostLogin_BadCredentialsMessage(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/login", `{"username":"develop@offen.dev","password":"nope"}`)

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Error != "bad username or password" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestLoginRoundTrip(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/login", `{"username":"develop@offen.dev","password":"develop"}`)
	cookie := authCookie(w)
	if cookie == nil {
		t.Fatal("no auth cookie after login")
	}

	w = f.do(http.MethodGet, "/login", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /login status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"userId":"u1"`) {
		t.Errorf("GET /login body = %s", w.Body.String())
	}

	w = f.do(http.MethodPost, "/logout", "", cookie)
	if w.Code != http.StatusNoContent {
		t.Fatalf("POST /logout status = %d, want 204", w.Code)
	}
	if expired := authCookie(w); expired == nil || expired.MaxAge >= 0 {
		t.Errorf("logout cookie = %+v", expired)
	}
	if len(f.sessions.sessions) != 0 {
		t.Error("session not deleted on logout")
	}

	w = f.do(http.MethodGet, "/login", "", cookie)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("GET /login after logout status = %d, want 401", w.Code)
	}
}

func TestGetLogin_NoCookie(t *testing.T) {
	f := newFixture(t)
	if w := f.do(http.MethodGet, "/login", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
