package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APIKIT_DOTENV_VALUE=loaded\n"), 0o600))
	t.Setenv("ENV_PATH", path)
	t.Setenv("APIKIT_DOTENV_VALUE", "")
	require.NoError(t, os.Unsetenv("APIKIT_DOTENV_VALUE"))

	require.NoError(t, LoadDotEnv("local", ".env"))
	assert.Equal(t, "loaded", os.Getenv("APIKIT_DOTENV_VALUE"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	t.Setenv("ENV_PATH", filepath.Join(t.TempDir(), "missing.env"))

	assert.Error(t, LoadDotEnv("local", ""))
	assert.NoError(t, LoadDotEnv("production", ""))
}

func TestTypedGetters(t *testing.T) {
	t.Setenv("APIKIT_FLAG", "true")
	t.Setenv("APIKIT_TTL", "90s")
	t.Setenv("APIKIT_TTL_SECONDS", "30")
	t.Setenv("APIKIT_BROKEN", "soon")

	assert.Equal(t, "fallback", String("APIKIT_UNSET", "fallback"))

	b, err := Bool("APIKIT_FLAG", false)
	require.NoError(t, err)
	assert.True(t, b)

	d, err := Duration("APIKIT_TTL", 0)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	d, err = Duration("APIKIT_TTL_SECONDS", 0)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	d, err = Duration("APIKIT_UNSET", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	_, err = Duration("APIKIT_BROKEN", 0)
	assert.Error(t, err)
	_, err = Bool("APIKIT_BROKEN", false)
	assert.Error(t, err)
}
