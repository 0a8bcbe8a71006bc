package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Server.Addr)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, ProviderGemini, cfg.Completion.Provider)
	assert.Equal(t, 60*time.Second, cfg.Completion.Timeout)
	assert.Equal(t, "1000", cfg.Ledger.DefaultBudget)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	content := "storage:\n  backend: memory\ncompletion:\n  provider: anthropic\n  model: claude-test\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("POCKETBUDGET_COMPLETION_APIKEY", "secret")
	t.Setenv("POCKETBUDGET_LEDGER_TIMEZONE", "Europe/Warsaw")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, ProviderAnthropic, cfg.Completion.Provider)
	assert.Equal(t, "claude-test", cfg.Completion.Model)
	assert.Equal(t, "secret", cfg.Completion.APIKey)
	assert.Equal(t, "Europe/Warsaw", cfg.Ledger.Timezone)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Application)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(a *Application) {},
		},
		{
			name:    "unknown backend",
			mutate:  func(a *Application) { a.Storage.Backend = "redis" },
			wantErr: "invalid storage backend",
		},
		{
			name:    "unknown provider",
			mutate:  func(a *Application) { a.Completion.Provider = "other" },
			wantErr: "invalid completion provider",
		},
		{
			name:    "negative budget",
			mutate:  func(a *Application) { a.Ledger.DefaultBudget = "-1" },
			wantErr: "cannot be negative",
		},
		{
			name:    "bad timezone",
			mutate:  func(a *Application) { a.Ledger.Timezone = "Mars/Olympus" },
			wantErr: "invalid ledger timezone",
		},
		{
			name:    "amqp scheme",
			mutate:  func(a *Application) { a.AMQP.URL = "http://localhost" },
			wantErr: "invalid AMQP URL scheme",
		},
		{
			name:    "sheets without credentials",
			mutate:  func(a *Application) { a.Sheets.SpreadsheetID = "abc" },
			wantErr: "sheets credentials file is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLedger_Location(t *testing.T) {
	loc, err := Ledger{Timezone: "Local"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	loc, err = Ledger{Timezone: "America/New_York"}.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}
