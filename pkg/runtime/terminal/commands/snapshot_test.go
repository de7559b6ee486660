package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSnapshot(t *testing.T) {
	dir := t.TempDir()

	t.Run("json keeps numbers exact", func(t *testing.T) {
		path := filepath.Join(dir, "s.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"owner":"u-1","target":{"visits":12.50},"tracking":{"catalog":["A"]}}`), 0o600))

		req, err := LoadSnapshot(path)

		require.NoError(t, err)
		assert.Equal(t, "u-1", req.Owner)
		assert.Equal(t, json.Number("12.50"), req.Target.(map[string]any)["visits"])
		assert.Equal(t, "A", req.Tracking.Catalog[0].Name)
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "s.yml")
		require.NoError(t, os.WriteFile(path, []byte("owner: u-2\nevaluation:\n  theme: compliance\n  scores:\n    \"\":\n      Helmet: 4\n"), 0o600))

		req, err := LoadSnapshot(path)

		require.NoError(t, err)
		assert.Equal(t, "u-2", req.Owner)
		assert.Equal(t, 4, req.Evaluation.Scores[""]["Helmet"])
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0o600))
		_, err := LoadSnapshot(path)
		assert.ErrorContains(t, err, "failed to parse snapshot")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadSnapshot(filepath.Join(dir, "nope.yaml"))
		assert.ErrorContains(t, err, "failed to read snapshot")
	})
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "r.pdf", outputPath("", "r.pdf"))
	assert.Equal(t, filepath.Join(dir, "r.pdf"), outputPath(dir, "r.pdf"))
	assert.Equal(t, filepath.Join(dir, "x.pdf"), outputPath(filepath.Join(dir, "x.pdf"), "r.pdf"))
}
