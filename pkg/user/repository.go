package user

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
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, userID string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, userID string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return repository{db: db}
}

const userColumns = `user_id, email, hashed_password, created_at, updated_at`

type membership struct {
	AccountID string `db:"account_id"`
	UserID    string `db:"user_id"`
}

func (r repository) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY email`); err != nil {
		return nil, errors.Wrap(err, "user: error listing users")
	}

	var members []membership
	if err := r.db.SelectContext(ctx, &members, `SELECT account_id, user_id FROM account_users`); err != nil {
		return nil, errors.Wrap(err, "user: error listing memberships")
	}
	byUser := map[string][]string{}
	for _, m := range members {
		byUser[m.UserID] = append(byUser[m.UserID], m.AccountID)
	}
	for i := range users {
		users[i].AccountIDs = byUser[users[i].UserID]
	}
	return users, nil
}

func (r repository) FindByID(ctx context.Context, userID string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = ?`, userID)
}

func (r repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r repository) findOne(ctx context.Context, query string, arg string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, r.db.Rebind(query), arg)
	if err == sql.ErrNoRows {
		return nil, pkg.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "user: error looking up user")
	}

	err = r.db.SelectContext(ctx, &u.AccountIDs,
		r.db.Rebind(`SELECT account_id FROM account_users WHERE user_id = ? ORDER BY account_id`), u.UserID)
	if err != nil {
		return nil, errors.Wrapf(err, "user: error looking up accounts of %s", u.UserID)
	}
	return &u, nil
}

func (r repository) Create(ctx context.Context, u *User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "user: error starting transaction")
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		VALUES (:user_id, :email, :hashed_password, :created_at, :updated_at)`,
		u,
	)
	if err != nil {
		if pkg.IsUniqueViolation(err) {
			return errors.Wrapf(pkg.ErrConflict, "user with email %s already exists", u.Email)
		}
		return errors.Wrap(err, "user: error creating user")
	}
	if err := insertMemberships(ctx, tx, u); err != nil {
		return err
	}
	return tx.Commit()
}

func (r repository) Update(ctx context.Context, u *User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "user: error starting transaction")
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx,
		`UPDATE users SET email = :email, hashed_password = :hashed_password, updated_at = :updated_at
		WHERE user_id = :user_id`,
		u,
	)
	if err != nil {
		if pkg.IsUniqueViolation(err) {
			return errors.Wrapf(pkg.ErrConflict, "user with email %s already exists", u.Email)
		}
		return errors.Wrapf(err, "user: error updating user %s", u.UserID)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM account_users WHERE user_id = ?`), u.UserID); err != nil {
		return errors.Wrapf(err, "user: error removing memberships of %s", u.UserID)
	}
	if err := insertMemberships(ctx, tx, u); err != nil {
		return err
	}
	return tx.Commit()
}

func insertMemberships(ctx context.Context, tx *sqlx.Tx, u *User) error {
	for _, accountID := range u.AccountIDs {
		_, err := tx.ExecContext(ctx,
			tx.Rebind(`INSERT INTO account_users (account_id, user_id) VALUES (?, ?)`),
			accountID, u.UserID,
		)
		if err != nil {
			return errors.Wrapf(err, "user: error adding %s to account %s", u.UserID, accountID)
		}
	}
	return nil
}

func (r repository) Delete(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "user: error starting transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM account_users WHERE user_id = ?`), userID); err != nil {
		return errors.Wrapf(err, "user: error removing memberships of %s", userID)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM users WHERE user_id = ?`), userID)
	if err != nil {
		return errors.Wrapf(err, "user: error deleting user %s", userID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return pkg.ErrNotFound
	}
	return tx.Commit()
}
