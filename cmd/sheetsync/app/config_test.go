package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/reconciler"
	"github.com/agentstation/sheetsync/pkg/sync"
)

// isolate points the config search paths at empty directories and clears
// every variable LoadConfig reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		"EXCEL_FILE", "MODE", "TOP15_ONLY", "SYNC_TIMELINE",
		"SHEETSYNC_CONFIG", "SHEETSYNC_SOURCE", "SHEETSYNC_MODE", "SHEETSYNC_STORE_DRIVER",
		"SHEETSYNC_STORE_DSN", "SHEETSYNC_TIMELINE_SYNC", "SHEETSYNC_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "create", config.Mode)
	assert.Equal(t, constants.DefaultSourceFile, config.Source)
	assert.Equal(t, "sqlite", config.Store.Driver)
	assert.Equal(t, constants.DefaultStorePath, config.Store.DSN)
	assert.Equal(t, filepath.Join("scripts", "out", "avaone_q1_payload.json"), config.PayloadPath)
	assert.Equal(t, "auto", config.LogFormat)
	assert.Empty(t, config.ConfigFile)
	assert.Nil(t, config.Profile)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".sheetsync.yaml"), `
mode: sync
source: from-file.xlsx
timeline_sync: true
store:
  driver: postgres
  dsn: postgres://localhost/workos
`)

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "sync", config.Mode)
	assert.Equal(t, "from-file.xlsx", config.Source)
	assert.True(t, config.TimelineSync)
	assert.Equal(t, "postgres", config.Store.Driver)
	assert.Contains(t, config.ConfigFile, ".sheetsync.yaml")

	t.Setenv("SHEETSYNC_SOURCE", "from-env.xlsx")
	config, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-env.xlsx", config.Source)

	t.Setenv("EXCEL_FILE", "legacy.xlsx")
	t.Setenv("MODE", "CREATE")
	t.Setenv("TOP15_ONLY", "1")
	t.Setenv("SYNC_TIMELINE", "0")
	config, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "legacy.xlsx", config.Source)
	assert.Equal(t, "create", config.Mode)
	assert.True(t, config.PriorityOnly)
	assert.False(t, config.TimelineSync)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".env"), "SHEETSYNC_SOURCE=dotenv.xlsx\nSHEETSYNC_MODE=sync\n")
	writeFile(t, filepath.Join(dir, ".env.local"), "SHEETSYNC_SOURCE=dotenv-local.xlsx\n")

	config, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "dotenv-local.xlsx", config.Source)
	assert.Equal(t, "sync", config.Mode)
}

func TestLoadConfigExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, `
source: custom.xlsx
sheets: ["Q1*", "NanaGarden"]
profile:
  project_marker: "project:garden"
  control_title: "Garden Control"
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.xlsx", config.Source)
	assert.Equal(t, []string{"Q1*", "NanaGarden"}, config.Sheets)
	require.NotNil(t, config.Profile)
	assert.Equal(t, "project:garden", config.Profile.ProjectMarker)
	assert.Equal(t, "Garden Control", config.Profile.ControlTitle)
	assert.Equal(t, reconciler.DefaultProfile().ControlMarker, config.Profile.ControlMarker)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		dir := isolate(t)
		_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
		var configErr *errors.ConfigError
		assert.ErrorAs(t, err, &configErr)
	})

	t.Run("malformed legacy flag", func(t *testing.T) {
		isolate(t)
		t.Setenv("TOP15_ONLY", "maybe")
		_, err := LoadConfig("")
		var configErr *errors.ConfigError
		assert.ErrorAs(t, err, &configErr)
	})
}

func validConfig() *Config {
	return &Config{
		Mode:         "create",
		Source:       "plan.xlsx",
		PayloadPath:  "out/payload.json",
		ManifestPath: "out/manifest.json",
		Store:        StoreConfig{Driver: "sqlite", DSN: "data/workos.db"},
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"none driver needs no dsn", func(c *Config) { c.Store = StoreConfig{Driver: "none"} }, ""},
		{"bad mode", func(c *Config) { c.Mode = "merge" }, "mode"},
		{"no source", func(c *Config) { c.Source = "" }, "source"},
		{"bad driver", func(c *Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"postgres without dsn", func(c *Config) { c.Store = StoreConfig{Driver: "postgres"} }, "store.dsn"},
		{"same output paths", func(c *Config) { c.ManifestPath = c.PayloadPath }, "manifest_path"},
		{"bad format", func(c *Config) { c.Format = "csv" }, "format"},
		{"bad profile", func(c *Config) {
			p := reconciler.DefaultProfile()
			p.ProjectMarker = ""
			c.Profile = &p
		}, "project_marker"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)

			err := config.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfigImportOptions(t *testing.T) {
	config := validConfig()
	config.Mode = "sync"
	config.TimelineSync = true
	config.Sheets = []string{"Q1*"}
	config.PriorityKeywords = []string{"hero"}

	opts := sync.Defaults().Apply(config.ImportOptions()...)
	assert.Equal(t, reconciler.ModeSync, opts.Mode)
	assert.True(t, opts.TimelineSync)
	assert.Equal(t, "plan.xlsx", opts.SourcePath)
	assert.Equal(t, []string{"Q1*"}, opts.Sheets)
	assert.Equal(t, []string{"hero"}, opts.PriorityKeywords)
	assert.Equal(t, []string{"*NanaGarden*"}, opts.PrioritySheets)
	assert.Equal(t, "out/manifest.json", opts.ManifestPath)
	assert.NoError(t, opts.Validate())
}

func TestUpdateFromFlags(t *testing.T) {
	config := validConfig()
	config.Format = "yaml"
	flags := &RootFlags{Format: "JSON", StoreDriver: "None", Verbose: true}
	changed := map[string]bool{"store-driver": true, "verbose": true}

	config.UpdateFromFlags(flags, func(name string) bool { return changed[name] })
	assert.Equal(t, "yaml", config.Format, "unchanged flags keep config values")
	assert.Equal(t, "none", config.Store.Driver)
	assert.True(t, config.Verbose)
}
