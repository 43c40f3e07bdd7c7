package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	LoginUrl   string `json:"login_url"`
	ListingUrl string `json:"listing_url"`
	OutputDir  string `json:"output_dir"`
}

func writeFile(t *testing.T, path, contents string) {
	err := os.WriteFile(path, []byte(contents), 0600)
	require.NoError(t, err)
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pickup.json5"), `{
		// comments are allowed
		login_url: "http://example.com/login",
		listing_url: "http://example.com/index",
	}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "pickup.json5"))
	require.NoError(t, err)
	require.Equal(t, "http://example.com/login", cfg.LoginUrl)
	require.Equal(t, "http://example.com/index", cfg.ListingUrl)
	require.Equal(t, "", cfg.OutputDir)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pickup.json5"), `{
		login_url: "http://example.com/login",
		output_dir: "out",
	}`)
	writeFile(t, filepath.Join(dir, "pickup.local.json5"), `{
		output_dir: "/mnt/share",
	}`)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "pickup.json5"))
	require.NoError(t, err)
	require.Equal(t, "http://example.com/login", cfg.LoginUrl)
	require.Equal(t, "/mnt/share", cfg.OutputDir)
}

func TestReadConfigNotFound(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadConfig[testConfig](filepath.Join(dir, "pickup.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
