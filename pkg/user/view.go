package user

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gobuffalo/validate"
	"github.com/gobuffalo/validate/validators"
	"github.com/google/uuid"
	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/olusolaa/offen-accounts/pkg/account"
	"github.com/olusolaa/offen-accounts/pkg/admin"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything beyond
)

var _ admin.ModelView = &View{} // Verify that View implements admin.ModelView.

// View is the admin view of users and the accounts they can access.
type View struct {
	repo     Repository
	accounts account.Repository
	cost     int
}

// NewView returns the user view. cost is the bcrypt cost, zero selects
// bcrypt.DefaultCost.
func NewView(repo Repository, accounts account.Repository, cost int) *View {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &View{repo: repo, accounts: accounts, cost: cost}
}

func (v *View) Name() string       { return "User" }
func (v *View) Endpoint() string   { return "user" }
func (v *View) Model() interface{} { return User{} }

func (v *View) Columns() []admin.Column {
	return []admin.Column{
		{Name: "user_id", Label: "User ID"},
		{Name: "email", Label: "Email"},
		{Name: "accounts", Label: "Accounts"},
	}
}

func (v *View) Fields(ctx context.Context, isNew bool) ([]admin.Field, error) {
	accounts, err := v.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	choices := make([]admin.Choice, 0, len(accounts))
	for _, a := range accounts {
		choices = append(choices, admin.Choice{Value: a.AccountID, Label: a.Name})
	}

	password := admin.Field{Name: "password", Label: "Password", Type: admin.FieldPassword, Required: isNew}
	if !isNew {
		password.Help = "Leave blank to keep the current password."
	}

	return []admin.Field{
		{Name: "email", Label: "Email", Type: admin.FieldEmail, Required: true},
		password,
		{Name: "accounts", Label: "Accounts", Type: admin.FieldMultiSelect, Choices: choices},
	}, nil
}

func (v *View) List(ctx context.Context) ([]admin.Record, error) {
	users, err := v.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	accounts, err := v.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(accounts))
	for _, a := range accounts {
		names[a.AccountID] = a.Name
	}

	records := make([]admin.Record, 0, len(users))
	for _, u := range users {
		var memberOf []string
		for _, id := range u.AccountIDs {
			if name, ok := names[id]; ok {
				memberOf = append(memberOf, name)
			}
		}
		records = append(records, admin.Record{
			ID: u.UserID,
			Values: map[string]string{
				"user_id":  u.UserID,
				"email":    u.Email,
				"accounts": strings.Join(memberOf, ", "),
			},
		})
	}
	return records, nil
}

func (v *View) Get(ctx context.Context, id string) (url.Values, error) {
	u, err := v.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return url.Values{
		"email":    {u.Email},
		"accounts": u.AccountIDs,
	}, nil
}

type input struct {
	email      string
	password   string
	accountIDs []string
}

func (v *View) parse(ctx context.Context, form url.Values, isNew bool) (*input, error) {
	in := &input{
		email:      strings.TrimSpace(strings.ToLower(form.Get("email"))),
		password:   form.Get("password"),
		accountIDs: form["accounts"],
	}

	checks := []validate.Validator{
		&validators.StringIsPresent{Name: "email", Field: in.email, Message: fmt.Sprintf("%s is missing", "email")},
		&validators.EmailLike{Name: "email", Field: in.email, Message: fmt.Sprintf("%s is invalid", "email")},
	}
	if isNew {
		checks = append(checks, &validators.StringIsPresent{Name: "password", Field: in.password, Message: fmt.Sprintf("%s is missing", "password")})
	}
	if isNew || in.password != "" {
		checks = append(checks, &validators.StringLengthInRange{Name: "password", Field: in.password, Min: minPasswordLength, Max: maxPasswordLength, Message: fmt.Sprintf("%s must have %d to %d characters", "password", minPasswordLength, maxPasswordLength)})
	}
	errs := validate.Validate(checks...)

	in.accountIDs = unique(in.accountIDs)
	if len(in.accountIDs) > 0 {
		known, err := v.accounts.FindByIDs(ctx, in.accountIDs)
		if err != nil {
			return nil, err
		}
		if len(known) != len(in.accountIDs) {
			errs.Add("accounts", "accounts contains unknown accounts")
		}
	}

	if errs.HasAny() {
		return nil, errs
	}
	return in, nil
}

func (v *View) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), v.cost)
	if err != nil {
		return "", errors.Wrap(err, "user: error hashing password")
	}
	return string(h), nil
}

func (v *View) Create(ctx context.Context, form url.Values) error {
	in, err := v.parse(ctx, form, true)
	if err != nil {
		return err
	}
	if err := v.checkEmailFree(ctx, in.email, ""); err != nil {
		return err
	}

	hashed, err := v.hash(in.password)
	if err != nil {
		return err
	}
	now := pkg.Now()
	err = v.repo.Create(ctx, &User{
		UserID:         uuid.New().String(),
		Email:          in.email,
		HashedPassword: hashed,
		AccountIDs:     in.accountIDs,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	return emailTaken(err)
}

func (v *View) Update(ctx context.Context, id string, form url.Values) error {
	u, err := v.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	in, err := v.parse(ctx, form, false)
	if err != nil {
		return err
	}
	if err := v.checkEmailFree(ctx, in.email, u.UserID); err != nil {
		return err
	}

	u.Email = in.email
	u.AccountIDs = in.accountIDs
	u.UpdatedAt = pkg.Now()
	if in.password != "" {
		if u.HashedPassword, err = v.hash(in.password); err != nil {
			return err
		}
	}
	return emailTaken(v.repo.Update(ctx, u))
}

func (v *View) Delete(ctx context.Context, id string) error {
	return v.repo.Delete(ctx, id)
}

// checkEmailFree reports a validation error when email belongs to a user
// other than self.
func (v *View) checkEmailFree(ctx context.Context, email, self string) error {
	existing, err := v.repo.FindByEmail(ctx, email)
	if errors.Is(err, pkg.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.UserID == self {
		return nil
	}
	return emailTaken(pkg.ErrConflict)
}

func emailTaken(err error) error {
	if !errors.Is(err, pkg.ErrConflict) {
		return err
	}
	errs := validate.NewErrors()
	errs.Add("email", "a user with this email already exists")
	return errs
}

func unique(ids []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
