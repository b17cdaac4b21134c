package pkg

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gobuffalo/validate"
	"github.com/gobuffalo/validate/validators"
)

// LoginReq is the body of POST /api/login.
type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (v *LoginReq) Bind(r *http.Request) error {
	v.Username = strings.TrimSpace(strings.ToLower(v.Username))

	errs := validate.Validate(
		&validators.StringIsPresent{Name: "username", Field: v.Username, Message: fmt.Sprintf("%s is missing", "username")},
		&validators.StringIsPresent{Name: "password", Field: v.Password, Message: fmt.Sprintf("%s is missing", "password")},
		&validators.EmailLike{Name: "username", Field: v.Username, Message: fmt.Sprintf("%s is invalid", "username")},
	)
	if errs.HasAny() {
		return errs
	}
	return nil
}
