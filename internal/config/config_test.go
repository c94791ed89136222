package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)

	dataDir := filepath.Join(home, ".taskdeck")
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "taskdeck.db"), cfg.StorePath)
	assert.Equal(t, filepath.Join(dataDir, "taskdeck.log"), cfg.LogFile)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dataDir := filepath.Join(home, ".taskdeck")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	yml := "store_path: /tmp/other.db\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.yml"), []byte(yml), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.StorePath)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Unset fields still get defaults
	assert.Equal(t, filepath.Join(dataDir, "taskdeck.log"), cfg.LogFile)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dataDir := filepath.Join(home, ".taskdeck")
	require.NoError(t, os.MkdirAll(dataDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.yml"), []byte("{not yaml"), 0600))

	_, err := Load()
	assert.Error(t, err)
}
