package pkg

import (
	"net/http"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx"
	"github.com/pkg/errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	ErrBadRequest      = errors.New("bad request")
	ErrTooManyRequests = errors.New("too many requests")
)

// NewError returns an error reading msg that matches kind with errors.Is.
func NewError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }

// BadRequest reports a request that could not be decoded. Validation errors
// are returned as they are.
func BadRequest(err error) error {
	if StatusFor(err) == http.StatusBadRequest {
		return err
	}
	return NewError(ErrBadRequest, err.Error())
}

const (
	mysqlDuplicateEntry    = 1062
	postgresUniqueViolated = "23505"
)

// IsUniqueViolation reports whether err is a unique constraint violation
// raised by either supported database.
func IsUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var pgErr pgx.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresUniqueViolated
	}
	return false
}
