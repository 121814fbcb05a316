package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"auth", Auth("Invalid/Expired Token"), KindAuth},
		{"wrapped not found", fmt.Errorf("get post: %w", NotFound("Post not found")), KindNotFound},
		{"domain rule", DomainRule("Cannot follow yourself."), KindDomainRule},
		{"field", FieldError("body", "Post must not be empty"), KindValidation},
		{"plain error", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestValidationMessage(t *testing.T) {
	err := FieldError("username", "Username is taken")
	assert.Equal(t, "Username is taken", err.Message)
	assert.Equal(t, map[string]string{"username": "Username is taken"}, err.Fields)

	err = Validation("Errors", map[string]string{"email": "Email must not be empty"})
	assert.Equal(t, "Errors", err.Message)
}

func TestInternalUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to save post", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[internal] failed to save post: connection reset", err.Error())
}
