package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	data       map[string]any
	sourceType SourceType
}

func (m *mockSource) Load() (map[string]any, error) { return m.data, nil }
func (m *mockSource) Type() SourceType               { return m.sourceType }

func TestConfig_Default(t *testing.T) {
	t.Run("Should return valid default configuration", func(t *testing.T) {
		cfg := Default()

		require.NotNil(t, cfg)
		assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.API.Timeout)
		assert.Equal(t, "auto", cfg.CLI.Mode)
		assert.Equal(t, "info", cfg.Runtime.LogLevel)
		assert.NotEmpty(t, cfg.Session.Path)
		require.NoError(t, NewService().Validate(cfg))
	})
}

func TestLoader_Load(t *testing.T) {
	t.Run("Should load default configuration when no sources provided", func(t *testing.T) {
		cfg, err := NewService().Load(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	})

	t.Run("Should let flags override YAML and environment", func(t *testing.T) {
		t.Setenv("TINKERFAI_API_URL", "https://env.example.com/api")
		t.Setenv("TINKERFAI_LOG_LEVEL", "warn")
		yamlSource := &mockSource{
			data: map[string]any{
				"api":     map[string]any{"base_url": "https://yaml.example.com/api", "timeout": "5s"},
				"runtime": map[string]any{"log_level": "debug"},
			},
			sourceType: SourceYAML,
		}
		flagSource := NewCLIProvider(map[string]any{"api-url": "https://flag.example.com/api"})
		svc := NewService()

		cfg, err := svc.Load(context.Background(), yamlSource, flagSource)

		require.NoError(t, err)
		assert.Equal(t, "https://flag.example.com/api", cfg.API.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.API.Timeout)
		assert.Equal(t, "warn", cfg.Runtime.LogLevel)
		assert.Equal(t, SourceCLI, svc.GetSource("api.base_url"))
		assert.Equal(t, SourceEnv, svc.GetSource("runtime.log_level"))
		assert.Equal(t, SourceYAML, svc.GetSource("api.timeout"))
	})

	t.Run("Should reject an invalid API URL", func(t *testing.T) {
		source := NewCLIProvider(map[string]any{"api-url": "ftp://example.com"})

		_, err := NewService().Load(context.Background(), source)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("Should reject an unknown output mode", func(t *testing.T) {
		source := NewCLIProvider(map[string]any{"format": "xml"})

		_, err := NewService().Load(context.Background(), source)

		require.Error(t, err)
	})
}

func TestYAMLProvider(t *testing.T) {
	t.Run("Should treat a missing file as empty", func(t *testing.T) {
		data, err := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")).Load()

		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Should drop nil values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tinkerfai.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: https://x.example.com/api\n  timeout:\n"), 0o600))

		data, err := NewYAMLProvider(path).Load()

		require.NoError(t, err)
		api, ok := data["api"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "https://x.example.com/api", api["base_url"])
		assert.NotContains(t, api, "timeout")
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("Should load variables from a dotenv file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("TINKERFAI_TEST_DOTENV=loaded\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("TINKERFAI_TEST_DOTENV") })

		require.NoError(t, LoadEnvFile(path))

		assert.Equal(t, "loaded", os.Getenv("TINKERFAI_TEST_DOTENV"))
	})

	t.Run("Should ignore a missing file", func(t *testing.T) {
		assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})
}

func TestManagerFromContext(t *testing.T) {
	t.Run("Should return the manager attached to the context", func(t *testing.T) {
		m := NewManager(nil)
		_, err := m.Load(context.Background())
		require.NoError(t, err)
		ctx := ContextWithManager(context.Background(), m)

		assert.Same(t, m, ManagerFromContext(ctx))
		assert.Equal(t, m.Get(), FromContext(ctx))
	})
}
