package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/jdelaire/notebot/internal/keychain"
)

// chdir moves into an empty directory so no stray .notebot.yaml is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	keyring.MockInit()
	chdir(t)
	t.Setenv(configPathEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://api.telegram.org", cfg.Telegram.BaseURL)
	assert.Equal(t, "notebot.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Session.SweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.Notes.Cooldown)
	assert.Equal(t, 8, cfg.Dispatcher.Workers)
	assert.Empty(t, cfg.File)
	assert.ErrorIs(t, cfg.RequireToken(), ErrNoToken)
}

func TestLoadFileAndEnv(t *testing.T) {
	keyring.MockInit()
	dir := chdir(t)
	t.Setenv(configPathEnv, "")

	yaml := []byte(`
telegram:
  token: from-file
database:
  path: /var/lib/notebot/notes.db
log:
  level: DEBUG
  format: json
notes:
  cooldown: 90s
dispatcher:
  workers: 2
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".notebot.yaml"), yaml, 0o600))
	t.Setenv("NOTEBOT_DISPATCHER_WORKERS", "16")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Telegram.Token)
	assert.Equal(t, "/var/lib/notebot/notes.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 90*time.Second, cfg.Notes.Cooldown)
	assert.Equal(t, 16, cfg.Dispatcher.Workers)
	assert.NotEmpty(t, cfg.File)
	assert.NoError(t, cfg.RequireToken())
}

func TestLoadConfigPathOverride(t *testing.T) {
	keyring.MockInit()
	chdir(t)
	other := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(other, ".notebot.yaml"), []byte("database:\n  path: elsewhere.db\n"), 0o600))
	t.Setenv(configPathEnv, other)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "elsewhere.db", cfg.Database.Path)
}

func TestRequireTokenFromKeychain(t *testing.T) {
	keyring.MockInit()
	chdir(t)
	t.Setenv(configPathEnv, "")
	require.NoError(t, keychain.SetToken("123:keychain"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Telegram.Token)
	require.NoError(t, cfg.RequireToken())
	assert.Equal(t, "123:keychain", cfg.Telegram.Token)

	t.Setenv("NOTEBOT_TELEGRAM_TOKEN", "123:env")
	cfg, err = Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.RequireToken())
	assert.Equal(t, "123:env", cfg.Telegram.Token)
}

func TestLoadWithoutKeychainService(t *testing.T) {
	keyring.MockInitWithError(errors.New("org.freedesktop.secrets was not provided"))
	chdir(t)
	t.Setenv(configPathEnv, "")
	t.Setenv("NOTEBOT_TELEGRAM_TOKEN", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "notebot.db", cfg.Database.Path)

	err = cfg.RequireToken()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoToken)
	assert.Contains(t, err.Error(), "keychain")

	t.Setenv("NOTEBOT_TELEGRAM_TOKEN", "123:env")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.NoError(t, cfg.RequireToken(), "an explicit token never touches the keychain")
}

func TestLoadExplicitFile(t *testing.T) {
	keyring.MockInit()
	chdir(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session:\n  ttl: 1h\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, path, cfg.File)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	keyring.MockInit()
	chdir(t)
	t.Setenv(configPathEnv, "")

	tests := map[string]string{
		"NOTEBOT_LOG_LEVEL":          "verbose",
		"NOTEBOT_LOG_FORMAT":         "xml",
		"NOTEBOT_DISPATCHER_WORKERS": "0",
		"NOTEBOT_NOTES_COOLDOWN":     "-1m",
	}
	for env, val := range tests {
		t.Run(env, func(t *testing.T) {
			t.Setenv(env, val)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadExpandsHome(t *testing.T) {
	keyring.MockInit()
	chdir(t)
	t.Setenv(configPathEnv, "")
	t.Setenv("NOTEBOT_DATABASE_PATH", "~/notebot/notes.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.Database.Path), "path = %s", cfg.Database.Path)
	assert.Equal(t, "notes.db", filepath.Base(cfg.Database.Path))
}
