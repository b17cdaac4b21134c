package account

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/pkg/errors"
)

func newMockRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "mysql")), mock
}

func sqlText(s string) string {
	return regexp.QuoteMeta(s)
}

var errConnReset = errors.New("connection reset")

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"account_id", "name", "public_key", "encrypted_private_key", "created_at", "updated_at"})
}

func TestRepository_Find(t *testing.T) {
	now := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expect  func(mock sqlmock.Sqlmock)
		run     func(r Repository) ([]Account, error)
		want    []string
		wantErr error
	}{
		{
			name: "find by id",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(sqlText(`FROM accounts WHERE account_id = ?`)).
					WithArgs("a1").
					WillReturnRows(accountRows().AddRow("a1", "offen", "pub", "enc", now, now))
			},
			run: func(r Repository) ([]Account, error) {
				a, err := r.FindByID(context.Background(), "a1")
				if err != nil {
					return nil, err
				}
				return []Account{*a}, nil
			},
			want: []string{"a1"},
		},
		{
			name: "find by id without rows",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(sqlText(`FROM accounts WHERE account_id = ?`)).
					WithArgs("a9").
					WillReturnRows(accountRows())
			},
			run: func(r Repository) ([]Account, error) {
				_, err := r.FindByID(context.Background(), "a9")
				return nil, err
			},
			wantErr: pkg.ErrNotFound,
		},
		{
			name:   "find by nil ids",
			expect: func(sqlmock.Sqlmock) {},
			run: func(r Repository) ([]Account, error) {
				return r.FindByIDs(context.Background(), nil)
			},
		},
		{
			name:   "find by empty ids",
			expect: func(sqlmock.Sqlmock) {},
			run: func(r Repository) ([]Account, error) {
				return r.FindByIDs(context.Background(), []string{})
			},
		},
		{
			name: "find by ids",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(sqlText(`FROM accounts WHERE account_id IN (?, ?) ORDER BY name`)).
					WithArgs("a1", "a2").
					WillReturnRows(accountRows().
						AddRow("a2", "mercury", "pub", "enc", now, now).
						AddRow("a1", "offen", "pub", "enc", now, now))
			},
			run: func(r Repository) ([]Account, error) {
				return r.FindByIDs(context.Background(), []string{"a1", "a2"})
			},
			want: []string{"a2", "a1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mock := newMockRepository(t)
			tt.expect(mock)

			got, err := tt.run(r)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d accounts, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].AccountID != id {
					t.Errorf("accounts[%d] = %s, want %s", i, got[i].AccountID, id)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestRepository_Write(t *testing.T) {
	deleteMembers := sqlText(`DELETE FROM account_users WHERE account_id = ?`)
	deleteAccount := sqlText(`DELETE FROM accounts WHERE account_id = ?`)

	tests := []struct {
		name    string
		expect  func(mock sqlmock.Sqlmock)
		run     func(r Repository) error
		wantErr error
	}{
		{
			name: "create",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(sqlText(`INSERT INTO accounts`)).
					WithArgs("a1", "offen", "pub", "enc", sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			run: func(r Repository) error {
				now := pkg.Now()
				return r.Create(context.Background(), &Account{
					AccountID: "a1", Name: "offen", PublicKey: "pub", EncryptedPrivateKey: "enc",
					CreatedAt: now, UpdatedAt: now,
				})
			},
		},
		{
			name: "update name",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(sqlText(`UPDATE accounts SET name = ?, updated_at = ? WHERE account_id = ?`)).
					WithArgs("renamed", sqlmock.AnyArg(), "a1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			run: func(r Repository) error {
				return r.UpdateName(context.Background(), "a1", "renamed")
			},
		},
		{
			name: "update name without changes",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(sqlText(`UPDATE accounts SET name = ?`)).
					WithArgs("offen", sqlmock.AnyArg(), "a1").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			run: func(r Repository) error {
				return r.UpdateName(context.Background(), "a1", "offen")
			},
		},
		{
			name: "delete removes members in the same transaction",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(deleteMembers).WithArgs("a1").WillReturnResult(sqlmock.NewResult(0, 2))
				mock.ExpectExec(deleteAccount).WithArgs("a1").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			run: func(r Repository) error {
				return r.Delete(context.Background(), "a1")
			},
		},
		{
			name: "delete unknown account",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(deleteMembers).WithArgs("a9").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec(deleteAccount).WithArgs("a9").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			run: func(r Repository) error {
				return r.Delete(context.Background(), "a9")
			},
			wantErr: pkg.ErrNotFound,
		},
		{
			name: "delete rolls back when members cannot be removed",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(deleteMembers).WithArgs("a1").WillReturnError(errConnReset)
				mock.ExpectRollback()
			},
			run: func(r Repository) error {
				return r.Delete(context.Background(), "a1")
			},
			wantErr: errConnReset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mock := newMockRepository(t)
			tt.expect(mock)

			if err := tt.run(r); !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}
