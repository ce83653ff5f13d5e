package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), DefaultFile, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "custom.toml", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "custom.toml")
}

func TestLoad_OverridesOnlyDefinedKeys(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, DefaultFile, []byte(`
format = "YAML"
strict_plans = true
max_depth = 8
`), 0o644))

	cfg, err := Load(fsys, DefaultFile, false)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Format)
	assert.True(t, cfg.StrictPlans)
	assert.Equal(t, 8, cfg.MaxDepth)
	assert.Equal(t, ".tap14/runs.db", cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Indent)
}

func TestLoad_AllKeys(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "c.toml", []byte(`
format = "json"
indent = true
max_depth = 3
strict_plans = false
db_path = " /tmp/runs.db "
log_level = "Debug"
`), 0o644))

	cfg, err := Load(fsys, "c.toml", true)
	require.NoError(t, err)
	assert.Equal(t, Config{
		Format:   "json",
		Indent:   true,
		MaxDepth: 3,
		DBPath:   "/tmp/runs.db",
		LogLevel: "debug",
	}, cfg)
}

func TestLoad_RejectsUnknownKey(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, DefaultFile, []byte("colour = \"red\"\n"), 0o644))

	_, err := Load(fsys, DefaultFile, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown key "colour"`)
}

func TestLoad_RejectsMalformedTOML(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, DefaultFile, []byte("format = \n"), 0o644))

	_, err := Load(fsys, DefaultFile, false)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	bad := Default()
	bad.Format = "xml"
	assert.ErrorContains(t, bad.Validate(), `invalid format "xml"`)

	bad = Default()
	bad.MaxDepth = 0
	assert.ErrorContains(t, bad.Validate(), "max_depth")

	bad = Default()
	bad.DBPath = ""
	assert.ErrorContains(t, bad.Validate(), "db_path")
}

func TestSave_RoundTrips(t *testing.T) {
	fsys := afero.NewMemMapFs()
	want := Config{Format: "yaml", Indent: true, MaxDepth: 12, StrictPlans: true, DBPath: "runs.db", LogLevel: "debug"}

	require.NoError(t, Save(fsys, DefaultFile, want))

	got, err := Load(fsys, DefaultFile, true)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
