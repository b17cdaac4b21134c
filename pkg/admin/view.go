package admin

import (
	"context"
	"net/url"
)

// FieldType selects the form control a field is rendered with.
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldEmail       FieldType = "email"
	FieldPassword    FieldType = "password"
	FieldMultiSelect FieldType = "multiselect"
)

// Column is a column of a view's list page.
type Column struct {
	Name  string
	Label string
}

type Choice struct {
	Value string
	Label string
}

// Field is an input of a view's create/edit form.
type Field struct {
	Name     string
	Label    string
	Type     FieldType
	Required bool
	Help     string
	Choices  []Choice
}

// Record is a row on a list page, Values are keyed by column name.
type Record struct {
	ID     string
	Values map[string]string
}

// ModelView exposes one model in the admin panel. Create and Update return a
// *validate.Errors for input that should be shown back to the user; any
// other error is treated as a failure of the backend.
type ModelView interface {
	// Name is the display name of the model, e.g. "Account".
	Name() string
	// Endpoint is the URL segment the view is served under.
	Endpoint() string
	// Model returns a zero value of the model type the view is bound to.
	Model() interface{}
	Columns() []Column
	Fields(ctx context.Context, isNew bool) ([]Field, error)
	List(ctx context.Context) ([]Record, error)
	// Get returns the form values of the record identified by id.
	Get(ctx context.Context, id string) (url.Values, error)
	Create(ctx context.Context, form url.Values) error
	Update(ctx context.Context, id string, form url.Values) error
	Delete(ctx context.Context, id string) error
}
