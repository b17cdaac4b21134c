package user

import (
	"context"

	"github.com/olusolaa/offen-accounts/pkg/account"
)

// Memberships looks up the current accounts of a user in repo.
func Memberships(repo Repository) account.Memberships {
	return func(ctx context.Context, userID string) ([]string, error) {
		u, err := repo.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return u.AccountIDs, nil
	}
}
