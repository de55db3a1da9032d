package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/rcpu/internal/config"
	"github.com/rileyhilliard/rcpu/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_NonInteractiveWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	var out bytes.Buffer

	err := Init(InitOptions{Path: path, NonInteractive: true, Out: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Created "+path)
	assert.Contains(t, out.String(), "rcpu serve")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestInit_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("server:\n  listen: :1\n"), 0644))

	t.Run("refuses without force", func(t *testing.T) {
		err := Init(InitOptions{Path: path, NonInteractive: true, Out: &bytes.Buffer{}})
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
		assert.Contains(t, err.Error(), "--force")
	})

	t.Run("overwrites with force", func(t *testing.T) {
		err := Init(InitOptions{Path: path, NonInteractive: true, Overwrite: true, Out: &bytes.Buffer{}})
		require.NoError(t, err)

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, config.DefaultListen, cfg.Server.Listen)
	})
}

func TestInitCmd_UsesConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "init", "--non-interactive"})
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, path)
}

func TestInitValidators(t *testing.T) {
	assert.Error(t, requireNonEmpty("listen address")("  "))
	assert.NoError(t, requireNonEmpty("listen address")(":3000"))

	assert.Error(t, validateAbsPath("data"))
	assert.NoError(t, validateAbsPath("/data"))

	assert.Error(t, validateHTTPURL("localhost:3000"))
	assert.Error(t, validateHTTPURL("ftp://box"))
	assert.NoError(t, validateHTTPURL("http://localhost:3000"))
	assert.NoError(t, validateHTTPURL("https://box"))
}
