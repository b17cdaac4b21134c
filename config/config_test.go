package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv(EnvSessionSecret, "s3cr3t")
	t.Setenv(EnvDatabaseURL, "root:secret@tcp(db:3306)/offen")
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T)
		wantErr bool
	}{
		{
			name:    "all required env vars set",
			setup:   setRequired,
			wantErr: false,
		},
		{
			name: "missing session secret",
			setup: func(t *testing.T) {
				t.Setenv(EnvSessionSecret, "")
				t.Setenv(EnvDatabaseURL, "root:secret@tcp(db:3306)/offen")
			},
			wantErr: true,
		},
		{
			name: "missing connection string",
			setup: func(t *testing.T) {
				t.Setenv(EnvSessionSecret, "s3cr3t")
				t.Setenv(EnvDatabaseURL, "")
			},
			wantErr: true,
		},
		{
			name: "unsupported dialect",
			setup: func(t *testing.T) {
				setRequired(t)
				t.Setenv(EnvDBDialect, "sqlite")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)

			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_WiresEnvironment(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SessionSecret != "s3cr3t" {
		t.Errorf("SessionSecret = %q, want %q", cfg.SessionSecret, "s3cr3t")
	}
	if cfg.Database.URL != "root:secret@tcp(db:3306)/offen" {
		t.Errorf("Database.URL = %q, want the value of %s", cfg.Database.URL, EnvDatabaseURL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Dialect != DialectMySQL {
		t.Errorf("Dialect = %q, want %q", cfg.Database.Dialect, DialectMySQL)
	}
	if cfg.Database.IdlePool != 2 {
		t.Errorf("IdlePool = %d, want 2", cfg.Database.IdlePool)
	}
	if cfg.Admin.Name != "offen admin" {
		t.Errorf("Admin.Name = %q", cfg.Admin.Name)
	}
	if cfg.Admin.Swatch != "flatly" {
		t.Errorf("Admin.Swatch = %q, want flatly", cfg.Admin.Swatch)
	}
	if cfg.Admin.TemplateMode != "bootstrap3" {
		t.Errorf("Admin.TemplateMode = %q, want bootstrap3", cfg.Admin.TemplateMode)
	}
	if cfg.Admin.BaseTemplate != "index.html" {
		t.Errorf("Admin.BaseTemplate = %q, want index.html", cfg.Admin.BaseTemplate)
	}
	if cfg.Admin.Protected() {
		t.Error("Admin.Protected() = true without credentials")
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v, want 24h", cfg.SessionTTL)
	}
	if cfg.KMS.Enabled() {
		t.Error("KMS.Enabled() = true without key arn")
	}
}

func TestLoad_SwatchOverride(t *testing.T) {
	setRequired(t)
	t.Setenv(EnvFlaskAdminSwatch, "cerulean")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Admin.Swatch != "cerulean" {
		t.Errorf("Admin.Swatch = %q, want cerulean", cfg.Admin.Swatch)
	}
}

func TestDBConfig_DSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     DBConfig
		want    string
		wantErr bool
	}{
		{
			name: "native dsn",
			cfg:  DBConfig{Dialect: DialectMySQL, URL: "root:secret@tcp(db:3306)/offen"},
			want: "root:secret@tcp(db:3306)/offen?parseTime=true",
		},
		{
			name: "sqlalchemy url",
			cfg:  DBConfig{Dialect: DialectMySQL, URL: "mysql+pymysql://root:secret@db:3306/offen"},
			want: "root:secret@tcp(db:3306)/offen?parseTime=true",
		},
		{
			name: "url without port",
			cfg:  DBConfig{Dialect: DialectMySQL, URL: "mysql://root:secret@db/offen"},
			want: "root:secret@tcp(db:3306)/offen?parseTime=true",
		},
		{
			name: "postgres passes through",
			cfg:  DBConfig{Dialect: DialectPostgres, URL: "postgres://u:p@db/offen"},
			want: "postgres://u:p@db/offen",
		},
		{
			name:    "empty",
			cfg:     DBConfig{Dialect: DialectMySQL},
			wantErr: true,
		},
		{
			name:    "unknown dialect",
			cfg:     DBConfig{Dialect: "oracle", URL: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.cfg.DSN()
			if (err != nil) != tt.wantErr {
				t.Fatalf("DSN() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDBConfig_DSN_KeepsQueryParams(t *testing.T) {
	cfg := DBConfig{Dialect: DialectMySQL, URL: "mysql+pymysql://root@db/offen?charset=utf8mb4"}

	got, err := cfg.DSN()
	if err != nil {
		t.Fatalf("DSN() error = %v", err)
	}
	if !strings.Contains(got, "charset=utf8mb4") {
		t.Errorf("DSN() = %q, want charset param", got)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Errorf("DSN() = %q, want parseTime param", got)
	}
}
