package pkg

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/render"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx"
	"github.com/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: ErrNotFound, want: http.StatusNotFound},
		{name: "wrapped not found", err: errors.Wrap(ErrNotFound, "account"), want: http.StatusNotFound},
		{name: "conflict", err: ErrConflict, want: http.StatusConflict},
		{name: "forbidden", err: errors.Wrapf(ErrForbidden, "account %s", "a1"), want: http.StatusForbidden},
		{name: "kind error", err: NewError(ErrUnauthorized, "bad username or password"), want: http.StatusUnauthorized},
		{name: "bad request", err: BadRequest(errors.New("EOF")), want: http.StatusBadRequest},
		{name: "rate limited", err: ErrTooManyRequests, want: http.StatusTooManyRequests},
		{name: "other", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewError(t *testing.T) {
	err := NewError(ErrUnauthorized, "bad username or password")
	if err.Error() != "bad username or password" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrUnauthorized) {
		t.Error("errors.Is(err, ErrUnauthorized) = false")
	}
	if errors.Is(err, ErrForbidden) {
		t.Error("errors.Is(err, ErrForbidden) = true")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "mysql duplicate", err: &mysql.MySQLError{Number: 1062}, want: true},
		{name: "mysql other", err: &mysql.MySQLError{Number: 1064}, want: false},
		{name: "postgres unique", err: pgx.PgError{Code: "23505"}, want: true},
		{name: "wrapped", err: errors.Wrap(&mysql.MySQLError{Number: 1062}, "insert"), want: true},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUniqueViolation(tt.err); got != tt.want {
				t.Errorf("IsUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		res     interface{}
		status  int
		wantErr string
	}{
		{name: "value", res: map[string]string{"ok": "yes"}, status: http.StatusOK},
		{name: "client error", res: ErrNotFound, status: http.StatusNotFound, wantErr: "not found"},
		{name: "internal error is masked", res: errors.New("dial tcp: secret host"), status: http.StatusInternalServerError, wantErr: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			Render(w, r, tt.res)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.wantErr == "" {
				return
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decoding body: %v", err)
			}
			if body.Error != tt.wantErr {
				t.Errorf("error = %q, want %q", body.Error, tt.wantErr)
			}
		})
	}
}

func TestLoginReq_Bind(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    string
	}{
		{name: "valid", body: `{"username":" Develop@Offen.dev ","password":"pass"}`, want: "develop@offen.dev"},
		{name: "missing password", body: `{"username":"develop@offen.dev"}`, wantErr: true},
		{name: "missing username", body: `{"password":"pass"}`, wantErr: true},
		{name: "not an email", body: `{"username":"develop","password":"pass"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(tt.body))
			r.Header.Set("Content-Type", "application/json")

			var req LoginReq
			err := render.Bind(r, &req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Bind() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && req.Username != tt.want {
				t.Errorf("Username = %q, want %q", req.Username, tt.want)
			}
			if err != nil && StatusFor(err) != http.StatusBadRequest {
				t.Errorf("StatusFor(Bind error) = %d, want 400", StatusFor(err))
			}
		})
	}
}
