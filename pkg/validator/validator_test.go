package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Title    string `json:"title" validate:"required,max=10"`
	Priority int    `json:"priority" validate:"min=1,max=5"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

func TestValidateStructPasses(t *testing.T) {
	require.NoError(t, ValidateStruct(sample{Title: "ok", Priority: 3}))
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(sample{Title: "", Priority: 9, Email: "not-an-email"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 3)

	fields := map[string]string{}
	for _, f := range failures {
		fields[f.Field] = f.Tag
	}
	require.Equal(t, "required", fields["title"])
	require.Equal(t, "max", fields["priority"])
	require.Equal(t, "email", fields["email"])
}

func TestUsernameRule(t *testing.T) {
	type account struct {
		Username string `json:"username" validate:"required,username"`
	}

	for _, name := range []string{"alice", "alice.b", "a1_b-c", "0day"} {
		require.NoError(t, ValidateStruct(account{Username: name}), "username %q", name)
	}

	for _, name := range []string{"_leading", "-leading", "has space", "semi;colon", "café"} {
		err := ValidateStruct(account{Username: name})
		require.Error(t, err, "username %q", name)

		failures, ok := err.(ValidationErrors)
		require.True(t, ok)
		require.Equal(t, "username", failures[0].Tag)
	}
}

func TestValidationErrorsMessage(t *testing.T) {
	err := ValidateStruct(sample{Title: "this title is far too long", Priority: 1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "title failed on max=10")
}
