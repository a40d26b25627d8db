package vcr_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getvcr/vcr"
	"github.com/getvcr/vcr/cassette"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vcr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
cassette_library_dir: /tmp/cassettes
default_record_mode: new_episodes
default_matcher: method_uri_body
`)

	cfg, err := vcr.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cassettes", cfg.CassetteLibraryDir)
	assert.Equal(t, cassette.ModeNewEpisodes, cfg.DefaultRecordMode)
	assert.Equal(t, "method_uri_body", cfg.DefaultMatcher.Identity())
}

func TestLoadConfig_EmptyFieldsKeepDefaults(t *testing.T) {
	path := writeConfig(t, `cassette_library_dir: fixtures`)

	cfg, err := vcr.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "fixtures", cfg.CassetteLibraryDir)
	assert.Empty(t, cfg.DefaultRecordMode)
	assert.Nil(t, cfg.DefaultMatcher)

	// The controller fills in once + method_uri when configured.
	v := vcr.New()
	cfg.CassetteLibraryDir = t.TempDir()
	require.NoError(t, v.Configure(cfg))
	require.NoError(t, v.Insert("defaults"))
	assert.Equal(t, cassette.ModeOnce, v.Cassette().Mode())
	assert.Equal(t, "method_uri", v.Cassette().Matcher().Identity())
}

func TestLoadConfig_InvalidMode(t *testing.T) {
	path := writeConfig(t, `default_record_mode: sometimes`)
	_, err := vcr.LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown record mode")
}

func TestLoadConfig_InvalidMatcher(t *testing.T) {
	path := writeConfig(t, `default_matcher: bogus`)
	_, err := vcr.LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown matcher")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := vcr.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
