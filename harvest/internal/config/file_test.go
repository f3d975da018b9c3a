package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, "https://getcracked.io", c.EntryURL())
	assert.Equal(t, "https://getcracked.io/questions", c.ListingURL())
	assert.Equal(t, "/question/", c.Site.ItemPath)
	assert.Equal(t, "cookies.json", c.Files.Cookies)
	assert.Equal(t, "all_questions.json", c.Files.Dataset)
	assert.Equal(t, BackendRod, c.Browser.Backend)
	assert.Equal(t, 2*time.Second, c.Timing.ItemDelay)
	assert.Equal(t, 10*time.Second, c.Timing.RevealTimeout)
	assert.NoError(t, c.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizharvest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
site:
  base_url: https://quiz.example.com/
files:
  dataset: out/questions.json
browser:
  backend: http
  resource_blocking: [images, fonts]
timing:
  item_delay: 500ms
run:
  limit: 5
`), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://quiz.example.com", c.EntryURL())
	assert.Equal(t, "https://quiz.example.com/questions", c.ListingURL())
	assert.Equal(t, "out/questions.json", c.Files.Dataset)
	assert.Equal(t, "cookies.json", c.Files.Cookies)
	assert.Equal(t, BackendHTTP, c.Browser.Backend)
	assert.Equal(t, []string{"images", "fonts"}, c.Browser.ResourceBlocking)
	assert.Equal(t, 500*time.Millisecond, c.Timing.ItemDelay)
	assert.Equal(t, 15*time.Second, c.Timing.ListingWait)
	assert.Equal(t, 5, c.Run.Limit)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(filepath.Join(dir, "absent.yaml"), filepath.Join(dir, "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, Default().Site, c.Site)
}

func TestLoad_EnvFileOverrides(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("QUIZHARVEST_DATASET=from-env.json\nQUIZHARVEST_HEADLESS=true\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("QUIZHARVEST_DATASET")
		os.Unsetenv("QUIZHARVEST_HEADLESS")
	})

	c, err := Load("", envFile)
	require.NoError(t, err)
	assert.Equal(t, "from-env.json", c.Files.Dataset)
	assert.True(t, c.Browser.Headless)
}

func TestApplyEnv_Invalid(t *testing.T) {
	c := Default()
	env := map[string]string{"QUIZHARVEST_ITEM_DELAY": "soon"}
	err := c.applyEnv(func(k string) (string, bool) { v, ok := env[k]; return v, ok })
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Browser.Backend = "selenium"
	assert.Error(t, c.Validate())

	c = Default()
	c.Site.BaseURL = "getcracked.io"
	assert.Error(t, c.Validate())

	c = Default()
	c.Run.Limit = -1
	assert.Error(t, c.Validate())
}
