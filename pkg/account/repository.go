package account

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/pkg/errors"
)

var (
	_ Repository = repository{} // Verify that repository implements Repository.
)

type Repository interface {
	List(ctx context.Context) ([]Account, error)
	FindByID(ctx context.Context, accountID string) (*Account, error)
	FindByIDs(ctx context.Context, accountIDs []string) ([]Account, error)
	Create(ctx context.Context, a *Account) error
	UpdateName(ctx context.Context, accountID, name string) error
	Delete(ctx context.Context, accountID string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return repository{db: db}
}

const accountColumns = `account_id, name, public_key, encrypted_private_key, created_at, updated_at`

func (r repository) List(ctx context.Context) ([]Account, error) {
	var accounts []Account
	err := r.db.SelectContext(ctx, &accounts, `SELECT `+accountColumns+` FROM accounts ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "account: error listing accounts")
	}
	return accounts, nil
}

func (r repository) FindByID(ctx context.Context, accountID string) (*Account, error) {
	var a Account
	err := r.db.GetContext(ctx, &a, r.db.Rebind(`SELECT `+accountColumns+` FROM accounts WHERE account_id = ?`), accountID)
	if err == sql.ErrNoRows {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "account: error looking up account %s", accountID)
	}
	return &a, nil
}

func (r repository) FindByIDs(ctx context.Context, accountIDs []string) ([]Account, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+accountColumns+` FROM accounts WHERE account_id IN (?) ORDER BY name`, accountIDs)
	if err != nil {
		return nil, errors.Wrap(err, "account: error building query")
	}
	var accounts []Account
	if err := r.db.SelectContext(ctx, &accounts, r.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "account: error looking up accounts")
	}
	return accounts, nil
}

func (r repository) Create(ctx context.Context, a *Account) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		VALUES (:account_id, :name, :public_key, :encrypted_private_key, :created_at, :updated_at)`,
		a,
	)
	if err != nil {
		return errors.Wrap(err, "account: error creating account")
	}
	return nil
}

func (r repository) UpdateName(ctx context.Context, accountID, name string) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE accounts SET name = ?, updated_at = ? WHERE account_id = ?`),
		name, pkg.Now(), accountID,
	)
	if err != nil {
		return errors.Wrapf(err, "account: error updating account %s", accountID)
	}
	return nil
}

func (r repository) Delete(ctx context.Context, accountID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "account: error starting transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM account_users WHERE account_id = ?`), accountID); err != nil {
		return errors.Wrapf(err, "account: error removing members of %s", accountID)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM accounts WHERE account_id = ?`), accountID)
	if err != nil {
		return errors.Wrapf(err, "account: error deleting account %s", accountID)
	}
	if err := expectRow(res); err != nil {
		return err
	}
	return tx.Commit()
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return pkg.ErrNotFound
	}
	return nil
}
