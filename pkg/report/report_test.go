package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.TestWriter{T: t}).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

func setupTestDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "rewriterc-report-test-*")
	require.NoError(t, err, "creating temp dir")
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestNew(t *testing.T) {
	t.Run("creates_writer", func(t *testing.T) {
		w, err := New("out.json")
		require.NoError(t, err, "creating writer")
		assert.NotNil(t, w, "writer should not be nil")
		assert.Equal(t, schemaVersion, w.file.SchemaVersion)
	})

	t.Run("requires_path", func(t *testing.T) {
		_, err := New("")
		require.Error(t, err, "empty path should fail")
		assert.Contains(t, err.Error(), "report path is required")
	})
}

func TestSaveAndLoad(t *testing.T) {
	ctx := setupTestLogger(t)

	t.Run("save_and_load_round_trip", func(t *testing.T) {
		dir := setupTestDir(t)
		path := filepath.Join(dir, "run.json")

		w, err := New(path)
		require.NoError(t, err, "creating writer")

		w.SetRun(".rewriterc.yaml", "abc123", "fixpoint", 5)
		w.AddFile(FileReport{
			Path:    "src/main.rs",
			Outcome: "unchanged",
			Passes:  1,
		})
		w.AddFile(FileReport{
			Path:          "src/commands.rs",
			Outcome:       "rewritten",
			Substitutions: 3,
			Passes:        2,
			Patterns:      map[string]int{"inject_app_handle": 2, "retire_store_dir": 1},
		})
		w.AddFile(FileReport{
			Path:    "src/store.rs",
			Outcome: "rejected",
			Reason:  "unbalanced delimiters",
		})

		err = w.Save(ctx)
		require.NoError(t, err, "saving report")

		got, err := Load(ctx, path)
		require.NoError(t, err, "loading saved report")

		assert.Equal(t, schemaVersion, got.SchemaVersion)
		assert.Equal(t, ".rewriterc.yaml", got.Catalog)
		assert.Equal(t, "abc123", got.CatalogHash)
		assert.Equal(t, "fixpoint", got.Mode)
		assert.Equal(t, 5, got.MaxPasses)
		assert.WithinDuration(t, time.Now().UTC(), got.GeneratedAt, time.Minute)

		// Entries come back sorted by path regardless of insertion order
		require.Len(t, got.Files, 3)
		assert.Equal(t, "src/commands.rs", got.Files[0].Path)
		assert.Equal(t, "src/main.rs", got.Files[1].Path)
		assert.Equal(t, "src/store.rs", got.Files[2].Path)

		assert.Equal(t, "rewritten", got.Files[0].Outcome)
		assert.Equal(t, 3, got.Files[0].Substitutions)
		assert.Equal(t, map[string]int{"inject_app_handle": 2, "retire_store_dir": 1}, got.Files[0].Patterns)
		assert.Equal(t, "unbalanced delimiters", got.Files[2].Reason)
	})

	t.Run("save_leaves_no_scratch_files", func(t *testing.T) {
		dir := setupTestDir(t)
		path := filepath.Join(dir, "run.json")

		w, err := New(path)
		require.NoError(t, err, "creating writer")
		require.NoError(t, w.Save(ctx), "saving report")

		entries, err := os.ReadDir(dir)
		require.NoError(t, err, "reading dir")
		require.Len(t, entries, 1, "only the report itself should remain")
		assert.Equal(t, "run.json", entries[0].Name())
	})

	t.Run("concurrent_save_uses_lock", func(t *testing.T) {
		dir := setupTestDir(t)
		path := filepath.Join(dir, "run.json")

		w, err := New(path)
		require.NoError(t, err, "creating writer")

		// Create the lock file manually to simulate another writer holding it
		lockPath := path + ".lock"
		lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		require.NoError(t, err, "creating lock file")
		defer os.Remove(lockPath)
		defer lockFile.Close()

		err = w.Save(ctx)
		require.Error(t, err, "saving should fail while the lock exists")
		assert.Contains(t, err.Error(), "creating lock file")
	})

	t.Run("invalid_json_returns_error", func(t *testing.T) {
		dir := setupTestDir(t)
		path := filepath.Join(dir, "run.json")

		err := os.WriteFile(path, []byte("{invalid json}"), 0600)
		require.NoError(t, err, "writing invalid json")

		_, err = Load(ctx, path)
		require.Error(t, err, "loading invalid json should fail")
		assert.Contains(t, err.Error(), "parsing report file")
	})

	t.Run("unknown_fields_are_rejected", func(t *testing.T) {
		dir := setupTestDir(t)
		path := filepath.Join(dir, "run.json")

		raw := `{"schema_version": "1.0.0", "generated_at": "2025-01-01T00:00:00Z", "catalog": "c.yaml", "catalog_hash": "x", "mode": "fixpoint", "max_passes": 5, "files": [], "surprise": true}`
		err := os.WriteFile(path, []byte(raw), 0600)
		require.NoError(t, err, "writing report with extra field")

		_, err = Load(ctx, path)
		require.Error(t, err, "unknown field should fail")
		assert.Contains(t, err.Error(), "parsing report file")
	})

	t.Run("foreign_schema_is_rejected", func(t *testing.T) {
		dir := setupTestDir(t)
		path := filepath.Join(dir, "run.json")

		raw := `{"schema_version": "9.9.9", "generated_at": "2025-01-01T00:00:00Z", "catalog": "c.yaml", "catalog_hash": "x", "mode": "fixpoint", "max_passes": 5, "files": []}`
		err := os.WriteFile(path, []byte(raw), 0600)
		require.NoError(t, err, "writing report with foreign schema")

		_, err = Load(ctx, path)
		require.Error(t, err, "foreign schema should fail")
		assert.Contains(t, err.Error(), "unsupported report schema")
	})

	t.Run("load_missing_file_fails", func(t *testing.T) {
		dir := setupTestDir(t)

		_, err := Load(ctx, filepath.Join(dir, "nope.json"))
		require.Error(t, err, "missing file should fail")
		assert.Contains(t, err.Error(), "reading report file")
	})
}

func TestHashCatalog(t *testing.T) {
	dir := setupTestDir(t)

	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("patterns: []\n"), 0600))

	hash, err := HashCatalog(path)
	require.NoError(t, err, "hashing catalog")
	assert.Len(t, hash, 64, "sha256 hex digest")

	again, err := HashCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, hash, again, "hash should be deterministic")

	require.NoError(t, os.WriteFile(path, []byte("patterns:\n  - name: x\n"), 0600))
	changed, err := HashCatalog(path)
	require.NoError(t, err)
	assert.NotEqual(t, hash, changed, "hash should track content")

	_, err = HashCatalog(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err, "missing catalog should fail")
	assert.Contains(t, err.Error(), "reading catalog for hashing")
}
