package envconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFallback(t *testing.T) {
	t.Setenv("SKILLUP_TEST_VALUE", "")
	require.Equal(t, "fallback", Get("SKILLUP_TEST_VALUE", "fallback"))

	t.Setenv("SKILLUP_TEST_VALUE", "set")
	require.Equal(t, "set", Get("SKILLUP_TEST_VALUE", "fallback"))
}

func TestGetInt(t *testing.T) {
	t.Setenv("SKILLUP_TEST_INT", "")
	value, err := GetInt("SKILLUP_TEST_INT", 7)
	require.NoError(t, err)
	require.Equal(t, 7, value)

	t.Setenv("SKILLUP_TEST_INT", " 42 ")
	value, err = GetInt("SKILLUP_TEST_INT", 7)
	require.NoError(t, err)
	require.Equal(t, 42, value)

	t.Setenv("SKILLUP_TEST_INT", "many")
	_, err = GetInt("SKILLUP_TEST_INT", 7)
	require.Error(t, err)
}

func TestGetBool(t *testing.T) {
	t.Setenv("SKILLUP_TEST_BOOL", "false")
	value, err := GetBool("SKILLUP_TEST_BOOL", true)
	require.NoError(t, err)
	require.False(t, value)

	t.Setenv("SKILLUP_TEST_BOOL", "maybe")
	_, err = GetBool("SKILLUP_TEST_BOOL", true)
	require.Error(t, err)
}

func TestGetList(t *testing.T) {
	t.Setenv("SKILLUP_TEST_LIST", "a, b,,c ")
	require.Equal(t, []string{"a", "b", "c"}, GetList("SKILLUP_TEST_LIST"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SKILLUP_DOTENV_VALUE=from-file\n"), 0o600))

	t.Setenv("SKILLUP_DOTENV_VALUE", "")
	require.NoError(t, os.Unsetenv("SKILLUP_DOTENV_VALUE"))
	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	require.Equal(t, "from-file", os.Getenv("SKILLUP_DOTENV_VALUE"))
}

func TestValidate(t *testing.T) {
	type sample struct {
		Port string `validate:"required"`
	}
	require.Error(t, Validate(sample{}))
	require.NoError(t, Validate(sample{Port: "8080"}))
}
