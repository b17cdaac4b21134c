package account

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gobuffalo/validate"
	"github.com/gobuffalo/validate/validators"
	"github.com/google/uuid"
	"github.com/olusolaa/offen-accounts/pkg"
	"github.com/olusolaa/offen-accounts/pkg/admin"
	"github.com/olusolaa/offen-accounts/pkg/keys"
	"github.com/pkg/errors"
)

const timeLayout = "2006-01-02 15:04"

var _ admin.ModelView = &View{} // Verify that View implements admin.ModelView.

// KeyGenerator creates the key pair of a new account.
type KeyGenerator func() (*keys.KeyPair, error)

// View is the admin view of accounts. Creating an account provisions its
// key pair; the private key is only ever stored encrypted.
type View struct {
	repo      Repository
	encrypter keys.Encrypter
	generate  KeyGenerator
}

func NewView(repo Repository, encrypter keys.Encrypter, generate KeyGenerator) *View {
	if generate == nil {
		generate = func() (*keys.KeyPair, error) {
			return keys.GenerateKeyPair(keys.DefaultRSAKeySize)
		}
	}
	return &View{repo: repo, encrypter: encrypter, generate: generate}
}

func (v *View) Name() string       { return "Account" }
func (v *View) Endpoint() string   { return "account" }
func (v *View) Model() interface{} { return Account{} }

func (v *View) Columns() []admin.Column {
	return []admin.Column{
		{Name: "account_id", Label: "Account ID"},
		{Name: "name", Label: "Name"},
		{Name: "created_at", Label: "Created"},
	}
}

func (v *View) Fields(context.Context, bool) ([]admin.Field, error) {
	return []admin.Field{
		{Name: "name", Label: "Name", Type: admin.FieldText, Required: true},
	}, nil
}

func (v *View) List(ctx context.Context) ([]admin.Record, error) {
	accounts, err := v.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]admin.Record, 0, len(accounts))
	for _, a := range accounts {
		records = append(records, admin.Record{
			ID: a.AccountID,
			Values: map[string]string{
				"account_id": a.AccountID,
				"name":       a.Name,
				"created_at": a.CreatedAt.Format(timeLayout),
			},
		})
	}
	return records, nil
}

func (v *View) Get(ctx context.Context, id string) (url.Values, error) {
	a, err := v.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return url.Values{"name": {a.Name}}, nil
}

func validateName(name string) error {
	errs := validate.Validate(
		&validators.StringIsPresent{Name: "name", Field: name, Message: fmt.Sprintf("%s is missing", "name")},
		&validators.StringLengthInRange{Name: "name", Field: name, Min: 1, Max: 128, Message: fmt.Sprintf("%s is invalid", "name")},
	)
	if errs.HasAny() {
		return errs
	}
	return nil
}

func (v *View) Create(ctx context.Context, form url.Values) error {
	name := strings.TrimSpace(form.Get("name"))
	if err := validateName(name); err != nil {
		return err
	}

	pair, err := v.generate()
	if err != nil {
		return err
	}
	encrypted, err := v.encrypter.Encrypt(ctx, pair.PrivateKey)
	if err != nil {
		return errors.Wrap(err, "account: error encrypting private key")
	}

	now := pkg.Now()
	return v.repo.Create(ctx, &Account{
		AccountID:           uuid.New().String(),
		Name:                name,
		PublicKey:           string(pair.PublicKey),
		EncryptedPrivateKey: encrypted,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
}

func (v *View) Update(ctx context.Context, id string, form url.Values) error {
	if _, err := v.repo.FindByID(ctx, id); err != nil {
		return err
	}
	name := strings.TrimSpace(form.Get("name"))
	if err := validateName(name); err != nil {
		return err
	}
	return v.repo.UpdateName(ctx, id, name)
}

func (v *View) Delete(ctx context.Context, id string) error {
	return v.repo.Delete(ctx, id)
}
