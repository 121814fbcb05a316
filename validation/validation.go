package validation

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^([0-9a-zA-Z]([-.\w]*[0-9a-zA-Z])*@([0-9a-zA-Z][-\w]*[0-9a-zA-Z]\.)+[a-zA-Z]{2,9})$`)

type RegisterInput struct {
	Name            string `json:"name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	HouseName       string `json:"houseName"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Result maps field names to messages. It is valid when empty.
type Result map[string]string

func (r Result) Valid() bool {
	return len(r) == 0
}

type Validator struct{}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) Registration(in RegisterInput) Result {
	errs := Result{}

	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Name must not be empty."
	}
	if strings.TrimSpace(in.Username) == "" {
		errs["username"] = "Username must not be empty."
	}

	if strings.TrimSpace(in.Email) == "" {
		errs["email"] = "Email must not be empty"
	} else if !emailRegex.MatchString(in.Email) {
		errs["email"] = "Email must be a valid email address"
	}

	if strings.TrimSpace(in.Password) == "" {
		errs["password"] = "Password must not be empty"
	} else if in.Password != in.ConfirmPassword {
		errs["confirmPassword"] = "Confirm password must match with password"
	}

	return errs
}

func (v *Validator) Login(in LoginInput) Result {
	errs := Result{}

	if strings.TrimSpace(in.Username) == "" {
		errs["username"] = "Username must not be empty."
	}
	if strings.TrimSpace(in.Password) == "" {
		errs["password"] = "Password must not be empty"
	}

	return errs
}
