package config

import (
	"net"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	_ "github.com/jackc/pgx/stdlib"
)

// Supported database dialects, named after their database/sql drivers.
const (
	DialectMySQL    = "mysql"
	DialectPostgres = "pgx"
)

const defaultMySQLPort = "3306"

// DBConfig describes the database connection.
type DBConfig struct {
	URL      string // raw connection string as found in the environment
	Dialect  string // dialect defaults to mysql
	Pool     int    // Defaults to 0 "unlimited". See https://golang.org/pkg/database/sql/#DB.SetMaxOpenConns
	IdlePool int    // Defaults to 2. See https://golang.org/pkg/database/sql/#DB.SetMaxIdleConns
}

// DSN returns the connection string in the form expected by the dialect's
// driver. MySQL URLs in SQLAlchemy notation (mysql+pymysql://user:pw@host/db)
// are translated into a go-sql-driver DSN.
func (c DBConfig) DSN() (string, error) {
	switch c.Dialect {
	case DialectPostgres:
		return c.URL, nil
	case DialectMySQL, "":
		return mysqlDSN(c.URL)
	default:
		return "", errors.Errorf("config: unsupported database dialect %q", c.Dialect)
	}
}

func mysqlDSN(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("config: empty database connection string")
	}

	var cfg *mysql.Config
	if strings.HasPrefix(raw, "mysql://") || strings.HasPrefix(raw, "mysql+") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", errors.Wrap(err, "config: error parsing database url")
		}
		cfg = mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		if _, _, err := net.SplitHostPort(u.Host); err != nil {
			cfg.Addr = net.JoinHostPort(u.Host, defaultMySQLPort)
		}
		if u.User != nil {
			cfg.User = u.User.Username()
			cfg.Passwd, _ = u.User.Password()
		}
		cfg.DBName = strings.TrimPrefix(u.Path, "/")
		for key, values := range u.Query() {
			if len(values) == 0 {
				continue
			}
			if cfg.Params == nil {
				cfg.Params = map[string]string{}
			}
			cfg.Params[key] = values[0]
		}
	} else {
		var err error
		cfg, err = mysql.ParseDSN(raw)
		if err != nil {
			return "", errors.Wrap(err, "config: error parsing database dsn")
		}
	}

	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// NewDB opens and verifies the database connection.
func NewDB(c DBConfig) (*sqlx.DB, error) {
	dsn, err := c.DSN()
	if err != nil {
		return nil, err
	}
	dialect := c.Dialect
	if dialect == "" {
		dialect = DialectMySQL
	}

	db, err := sqlx.Connect(dialect, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "config: error connecting to database")
	}

	if c.Pool != 0 {
		db.SetMaxOpenConns(c.Pool)
	}

	if c.IdlePool <= 0 {
		db.SetMaxIdleConns(2)
	} else {
		db.SetMaxIdleConns(c.IdlePool)
	}

	logrus.WithFields(logrus.Fields{
		"context": "db_init",
		"dialect": dialect,
	}).Info("database connected")

	return db, nil
}
