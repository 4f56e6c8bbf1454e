package helpers

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("TERABOX_EMAIL", "")
	t.Setenv("TERABOX_PASSWORD", "")
	t.Setenv("TERALINK_MODE", "")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ListModeLazy, cfg.Mode)
	assert.Equal(t, ":3000", cfg.HttpHost)
	assert.Equal(t, "250528", cfg.TeraBox.AppId)
	assert.Equal(t, 8*time.Second, cfg.TeraBox.RequestTimeout())
	assert.Equal(t, time.Hour, cfg.TeraBox.SessionTimeout())
	assert.False(t, cfg.TeraBox.HasCredentials())
}

func TestLoadConfig_YamlAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yamlContent := `
httpHost: ":8080"
mode: eager
teraBox:
  domain: "https://www.terabox.com"
  email: "file@example.com"
  password: "from-file"
  timeout: 5
  maxDirectories: 20
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644))
	t.Setenv("TERABOX_EMAIL", "")
	t.Setenv("TERABOX_PASSWORD", "from-env")
	t.Setenv("TERALINK_MODE", "")
	t.Setenv("PORT", "9000")

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, ListModeEager, cfg.Mode)
	assert.Equal(t, ":9000", cfg.HttpHost)
	assert.Equal(t, "https://www.terabox.com", cfg.TeraBox.Domain)
	assert.Equal(t, "file@example.com", cfg.TeraBox.Email)
	assert.Equal(t, "from-env", cfg.TeraBox.Password)
	assert.Equal(t, 5*time.Second, cfg.TeraBox.RequestTimeout())
	assert.Equal(t, 20, cfg.TeraBox.MaxDirectories)
	// 未在文件中出现的字段保留默认值
	assert.Equal(t, "250528", cfg.TeraBox.AppId)
	assert.Equal(t, 3600, cfg.TeraBox.SessionTTL)
}

func TestLoadConfig_InvalidMode(t *testing.T) {
	t.Setenv("TERALINK_MODE", "recursive")
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_BadYaml(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("teraBox: [unclosed"), 0644))
	_, err := LoadConfig(configPath)
	assert.Error(t, err)
}

func TestParseListMode(t *testing.T) {
	mode, err := ParseListMode(" EAGER ")
	require.NoError(t, err)
	assert.Equal(t, ListModeEager, mode)

	mode, err = ParseListMode("")
	require.NoError(t, err)
	assert.Equal(t, ListMode(""), mode)

	_, err = ParseListMode("deep")
	assert.Error(t, err)
}

func TestLoadEnvFromFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	content := "# comment\n\nTERALINK_TEST_KEY = value=with=equals\n=novalue\n"
	require.NoError(t, os.WriteFile(envPath, []byte(content), 0644))
	t.Setenv("TERALINK_TEST_KEY", "")

	require.NoError(t, LoadEnvFromFile(envPath))
	assert.Equal(t, " value=with=equals", os.Getenv("TERALINK_TEST_KEY"))

	assert.NoError(t, LoadEnvFromFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestStartLogRotation_InvalidSpec(t *testing.T) {
	assert.Error(t, StartLogRotation("not a cron"))
}

func TestLoadEnvFromFile_NoticeGoesToStderr(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("# comment\nTERALINK_TEST_VALUE=a=b\n"), 0644))
	t.Setenv("TERALINK_TEST_VALUE", "")

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	loadErr := LoadEnvFromFile(envPath)
	os.Stdout = stdout
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)

	require.NoError(t, loadErr)
	assert.Empty(t, string(out))
	assert.Equal(t, "a=b", os.Getenv("TERALINK_TEST_VALUE"))
}
