package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEnv(t *testing.T, values map[string]string) {
	t.Helper()
	prev := Env
	Env = values
	t.Cleanup(func() { Env = prev })
}

func TestGetEnvPrefersLoadedFile(t *testing.T) {
	t.Setenv("CFX_TEST_KEY", "from-os")
	withEnv(t, map[string]string{"CFX_TEST_KEY": "from-file"})

	assert.Equal(t, "from-file", GetEnv("CFX_TEST_KEY", "default"))
}

func TestGetEnvFallsBackToOSAndDefault(t *testing.T) {
	withEnv(t, map[string]string{})
	t.Setenv("CFX_TEST_OS_ONLY", "from-os")

	assert.Equal(t, "from-os", GetEnv("CFX_TEST_OS_ONLY", "default"))
	assert.Equal(t, "default", GetEnv("CFX_TEST_MISSING", "default"))
}

func TestTypedGetters(t *testing.T) {
	withEnv(t, map[string]string{
		"INT_OK":       "42",
		"INT_BAD":      "forty-two",
		"BOOL_OK":      "true",
		"DURATION_OK":  "3s",
		"DURATION_BAD": "soon",
	})

	assert.Equal(t, 42, GetEnvInt("INT_OK", 1))
	assert.Equal(t, 1, GetEnvInt("INT_BAD", 1))
	assert.True(t, GetEnvBool("BOOL_OK", false))
	assert.False(t, GetEnvBool("BOOL_MISSING", false))
	assert.Equal(t, 3*time.Second, GetEnvDuration("DURATION_OK", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("DURATION_BAD", time.Second))
}

func TestIsDev(t *testing.T) {
	withEnv(t, map[string]string{"APP_ENV": "dev"})
	assert.True(t, IsDev())

	Env = map[string]string{"APP_ENV": "prod"}
	assert.False(t, IsDev())
}

func TestSetupEnvFile(t *testing.T) {
	prev := Env
	t.Cleanup(func() { Env = prev })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("APP_PORT=4100\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, SetupEnvFile())
	assert.Equal(t, "4100", GetEnv("APP_PORT", ""))
}
