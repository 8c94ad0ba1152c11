package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/tinkerfai/tinkerfai/cli/helpers"
	"github.com/tinkerfai/tinkerfai/pkg/config"
)

func TestSetupGlobalConfig(t *testing.T) {
	t.Run("Should inject the YAML configuration into the context", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "tinkerfai.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("cli:\n  mode: json\napi:\n  base_url: https://api.example.com/api\n"), 0o600))

		cmd := RootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--env-file=", "--config", cfgPath}))

		require.NoError(t, SetupGlobalConfig(cmd))

		cfg := config.FromContext(cmd.Context())
		require.NotNil(t, cfg)
		assert.Equal(t, "json", cfg.CLI.Mode)
		assert.Equal(t, "https://api.example.com/api", cfg.API.BaseURL)
	})

	t.Run("Should let flags override the YAML file", func(t *testing.T) {
		dir := t.TempDir()
		cfgPath := filepath.Join(dir, "tinkerfai.yaml")
		require.NoError(t, os.WriteFile(cfgPath, []byte("api:\n  base_url: https://api.example.com/api\n"), 0o600))

		cmd := RootCmd()
		require.NoError(t, cmd.ParseFlags([]string{
			"--env-file=", "--config", cfgPath, "--api-url", "https://flag.example.com/api", "--format", "tui",
		}))

		require.NoError(t, SetupGlobalConfig(cmd))

		cfg := config.FromContext(cmd.Context())
		assert.Equal(t, "https://flag.example.com/api", cfg.API.BaseURL)
		assert.Equal(t, "tui", cfg.CLI.Mode)
	})

	t.Run("Should reject an invalid output format", func(t *testing.T) {
		cmd := RootCmd()
		require.NoError(t, cmd.ParseFlags([]string{"--env-file=", "--config=", "--format", "xml"}))
		assert.Error(t, SetupGlobalConfig(cmd))
	})
}

// platform is a minimal stand-in for the learning platform API.
type platform struct {
	mu       sync.Mutex
	projects []map[string]any
	answers  []map[string]any

	// questionsServed records the project ids whose questions were fetched.
	questionsServed []string
}

func (p *platform) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}
	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if r.Header.Get("Authorization") != "Bearer access" {
			write(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid token"})
			return false
		}
		return true
	}
	mux.HandleFunc("POST /api/signin", func(w http.ResponseWriter, _ *http.Request) {
		write(w, http.StatusOK, map[string]any{
			"success": true, "message": "Sign in successful",
			"data": map[string]any{
				"accessToken": "access", "refreshToken": "refresh", "idToken": "id",
				"user": map[string]any{"email": "ada@example.com", "firstName": "Ada", "lastName": "Lovelace"},
			},
		})
	})
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		write(w, http.StatusOK, map[string]any{"success": true, "projects": p.projects})
	})
	mux.HandleFunc("POST /api/projects", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		p.mu.Lock()
		defer p.mu.Unlock()
		created := map[string]any{
			"projectId":   fmt.Sprintf("p%d", len(p.projects)+1),
			"projectName": req["projectName"],
			"projectType": req["projectType"],
			"createdAt":   "2025-06-01T10:00:00Z",
			"userEmail":   "ada@example.com",
		}
		p.projects = append(p.projects, created)
		write(w, http.StatusOK, map[string]any{"success": true, "message": "Project created", "project": created})
	})
	mux.HandleFunc("GET /api/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		for _, pr := range p.projects {
			if pr["projectId"] == r.PathValue("id") {
				write(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"project": pr}})
				return
			}
		}
		write(w, http.StatusNotFound, map[string]any{"detail": "Project not found"})
	})
	mux.HandleFunc("GET /api/projects/{id}/questions/{task}/{subtask}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		p.mu.Lock()
		p.questionsServed = append(p.questionsServed, r.PathValue("id"))
		p.mu.Unlock()
		write(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{"question": map[string]any{
				"questionId": "q-" + r.PathValue("task") + "-" + r.PathValue("subtask"),
				"taskIndex":  1, "subtaskIndex": 0,
				"questionType": "radio", "questionText": "Which problem type?", "isRequired": true,
				"options": []string{"classification", "regression"},
			}},
		})
	})
	mux.HandleFunc("POST /api/projects/{id}/answers", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		p.mu.Lock()
		p.answers = append(p.answers, body)
		p.mu.Unlock()
		write(w, http.StatusOK, map[string]any{"success": true, "message": "Answer saved"})
	})
	return mux
}

func TestRootCmd_JSONMode(t *testing.T) {
	srv := &platform{}
	server := httptest.NewServer(srv.handler(t))
	defer server.Close()
	sessionFile := filepath.Join(t.TempDir(), "session.json")

	run := func(t *testing.T, args ...string) (string, error) {
		t.Helper()
		root := RootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(append([]string{
			"--format", "json", "--env-file=", "--config=",
			"--api-url", server.URL + "/api", "--session-file", sessionFile, "--log-level", "error",
		}, args...))
		err := root.Execute()
		return out.String(), err
	}

	t.Run("Should require a session before listing projects", func(t *testing.T) {
		_, err := run(t, "project", "list")
		var cliErr *helpers.CliError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, helpers.CodeNotAuthenticated, cliErr.Code)
		assert.Equal(t, helpers.RedirectSignIn, cliErr.Context["redirect"])
	})

	t.Run("Should sign in and store the session", func(t *testing.T) {
		out, err := run(t, "auth", "signin", "--email", "ada@example.com", "--password", "secret")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", gjson.Get(out, "user.email").String())
		_, statErr := os.Stat(sessionFile)
		assert.NoError(t, statErr)
	})

	t.Run("Should create and list projects", func(t *testing.T) {
		out, err := run(t, "project", "create", "--name", "  Iris species  ", "--type", "beginner")
		require.NoError(t, err)
		assert.Equal(t, "Iris species", gjson.Get(out, "project.projectName").String())

		out, err = run(t, "project", "list")
		require.NoError(t, err)
		assert.Equal(t, int64(1), gjson.Get(out, "total").Int())
		assert.Equal(t, "p1", gjson.Get(out, "projects.0.projectId").String())
	})

	t.Run("Should reject an invalid project locally", func(t *testing.T) {
		_, err := run(t, "project", "create", "--name", "x", "--type", "wizard")
		var cliErr *helpers.CliError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, helpers.CodeValidation, cliErr.Code)
	})

	t.Run("Should redirect to the profile for a project the user does not own", func(t *testing.T) {
		_, err := run(t, "project", "show", "nope")
		var cliErr *helpers.CliError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, helpers.CodeRedirect, cliErr.Code)
		assert.Equal(t, "profile", cliErr.Context["redirect"])
	})

	t.Run("Should check ownership before one-shot question and answer calls", func(t *testing.T) {
		for _, args := range [][]string{
			{"puzzle", "question", "nope", "--task", "2", "--subtask", "1"},
			{"puzzle", "answer", "nope", "--task", "2", "--subtask", "1", "--value", "classification"},
		} {
			_, err := run(t, args...)
			var cliErr *helpers.CliError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, helpers.CodeRedirect, cliErr.Code)
			assert.Equal(t, "profile", cliErr.Context["redirect"])
		}
		srv.mu.Lock()
		defer srv.mu.Unlock()
		assert.Empty(t, srv.answers)
		assert.Empty(t, srv.questionsServed)
	})

	t.Run("Should submit an answer for a task step", func(t *testing.T) {
		out, err := run(t, "puzzle", "answer", "p1", "--task", "2", "--subtask", "1", "--value", "classification")
		require.NoError(t, err)
		assert.Equal(t, "advanced", gjson.Get(out, "transition.outcome").String())

		srv.mu.Lock()
		defer srv.mu.Unlock()
		require.Len(t, srv.answers, 1)
		assert.Equal(t, "radio", srv.answers[0]["answerType"])
		assert.Equal(t, "classification", srv.answers[0]["selectedOption"])
		assert.Equal(t, "ada@example.com", srv.answers[0]["userEmail"])
	})
}
