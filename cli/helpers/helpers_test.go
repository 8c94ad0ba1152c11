package helpers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinkerfai/tinkerfai/cli/api"
	"github.com/tinkerfai/tinkerfai/cli/tui/models"
)

func TestCategorize(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
		msg  string
	}{
		{"canceled", fmt.Errorf("load: %w", context.Canceled), CodeCanceled, "Operation was canceled by user"},
		{"expired", &api.SessionExpiredError{Operation: "list projects"}, CodeSessionExpired, api.MsgSessionExpired},
		{"no token", &api.NotAuthenticatedError{}, CodeNotAuthenticated, api.MsgNotAuthenticated},
		{"network", &api.NetworkError{Operation: "sign in", Cause: errors.New("dial tcp")}, CodeNetwork, api.MsgNetwork},
		{"validation", &api.ValidationError{Field: "Email", Message: "Please enter a valid email."}, CodeValidation, "Please enter a valid email."},
		{"api", &api.APIError{Operation: "create project", StatusCode: 400, Message: "Project name taken"}, CodeAPI, "Project name taken"},
		{"other", errors.New("boom"), CodeInternal, "boom"},
	}
	for _, tc := range cases {
		t.Run("Should categorize "+tc.name, func(t *testing.T) {
			got := Categorize(tc.err)
			require.NotNil(t, got)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, tc.msg, got.Message)
			assert.ErrorIs(t, got, tc.err)
		})
	}

	t.Run("Should send the user to sign-in when the session is gone", func(t *testing.T) {
		for _, err := range []error{&api.SessionExpiredError{}, &api.NotAuthenticatedError{}} {
			got := Categorize(fmt.Errorf("load question: %w", err))
			assert.Equal(t, RedirectSignIn, got.Context["redirect"])
		}
		assert.Nil(t, Categorize(errors.New("boom")).Context)
	})

	t.Run("Should pass through an existing CliError", func(t *testing.T) {
		in := NewCliError(CodeRedirect, "Project not found")
		assert.Same(t, in, Categorize(fmt.Errorf("wrapped: %w", in)))
	})

	t.Run("Should return nil for nil", func(t *testing.T) {
		assert.Nil(t, Categorize(nil))
	})
}

func TestOutputError(t *testing.T) {
	t.Run("Should write JSON with code and message", func(t *testing.T) {
		var buf bytes.Buffer
		OutputError(&buf, &api.APIError{StatusCode: 404, Message: "Project not found"}, models.ModeJSON)
		assert.JSONEq(t, `{"code":"API_ERROR","error":"Project not found","context":{"status":404}}`, buf.String())
	})

	t.Run("Should write the message in TUI mode", func(t *testing.T) {
		var buf bytes.Buffer
		OutputError(&buf, &api.SessionExpiredError{}, models.ModeTUI)
		assert.Contains(t, buf.String(), api.MsgSessionExpired)
	})
}

func TestSaveCode(t *testing.T) {
	t.Run("Should slugify the project name", func(t *testing.T) {
		assert.Equal(t, "house_prices_v2_ml_model.py", CodeFileName("House Prices v2"))
		assert.Equal(t, "project_ml_model.py", CodeFileName("  "))
	})

	t.Run("Should write the code under the output directory", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		path, err := SaveCode(fs, "out", "Iris", "print('hi')\n")
		require.NoError(t, err)
		assert.Equal(t, "out/iris_ml_model.py", path)
		data, err := afero.ReadFile(fs, path)
		require.NoError(t, err)
		assert.Equal(t, "print('hi')\n", string(data))
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("Should not escape HTML characters", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, map[string]string{"q": "a < b"}))
		assert.Equal(t, "{\n  \"q\": \"a < b\"\n}\n", buf.String())
	})
}
