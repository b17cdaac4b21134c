package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestReadDoc(t *testing.T) {
	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("ReadDoc() error = %v", err)
	}

	var parsed struct {
		Swagger string                     `json:"swagger"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		t.Fatalf("doc is not valid json: %v", err)
	}
	if parsed.Swagger != "2.0" {
		t.Errorf("swagger = %q, want 2.0", parsed.Swagger)
	}
	for _, path := range []string{"/api/login", "/api/logout", "/api/accounts/{accountID}", "/api/accounts/{accountID}/key"} {
		if _, ok := parsed.Paths[path]; !ok {
			t.Errorf("doc does not describe %s", path)
		}
	}
}
