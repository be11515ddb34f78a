package report

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/rewriterc/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// schemaVersion is bumped whenever the report shape changes incompatibly.
const schemaVersion = "1.0.0"

// RunReport is the serialized record of one migration run
type RunReport struct {
	SchemaVersion string    `json:"schema_version"`
	GeneratedAt   time.Time `json:"generated_at"`

	// Catalog identifies the pattern catalog the run applied
	Catalog     string `json:"catalog"`
	CatalogHash string `json:"catalog_hash"`

	// Mode and MaxPasses mirror the coordinator configuration
	Mode      string `json:"mode"`
	MaxPasses int    `json:"max_passes"`

	// Files holds one entry per file the run touched, sorted by path
	Files []FileReport `json:"files"`
}

// FileReport records one file's transaction result
type FileReport struct {
	Path          string `json:"path"`
	Outcome       string `json:"outcome"`
	Substitutions int    `json:"substitutions"`
	Passes        int    `json:"passes"`

	// Patterns maps pattern name to how many sites it rewrote in this file
	Patterns map[string]int `json:"patterns,omitempty"`

	// Reason is set when the outcome is rejected
	Reason string `json:"reason,omitempty"`

	// Error is set when the outcome is failed
	Error string `json:"error,omitempty"`
}

// Writer accumulates file entries for one run and persists them as JSON
type Writer struct {
	path string
	mu   sync.Mutex
	file RunReport
}

// New creates a report writer targeting the given output path
func New(path string) (*Writer, error) {
	if path == "" {
		return nil, errors.Errorf("report path is required")
	}
	return &Writer{
		path: path,
		file: RunReport{SchemaVersion: schemaVersion},
	}, nil
}

// SetRun records the run configuration the file entries belong to
func (w *Writer) SetRun(catalog, catalogHash, mode string, maxPasses int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.file.Catalog = catalog
	w.file.CatalogHash = catalogHash
	w.file.Mode = mode
	w.file.MaxPasses = maxPasses
}

// AddFile appends one file's result to the report
func (w *Writer) AddFile(f FileReport) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.file.Files = append(w.file.Files, f)
}

// Save writes the report to disk. A sibling .lock file guards against two
// processes writing the same report; the write itself goes through a temp
// file and rename so readers never observe a partial report.
func (w *Writer) Save(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.file.GeneratedAt = time.Now().UTC()
	sort.Slice(w.file.Files, func(i, j int) bool {
		return w.file.Files[i].Path < w.file.Files[j].Path
	})

	lockPath := w.path + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return errors.Errorf("creating lock file: %w", err)
	}
	defer os.Remove(lockPath)
	defer lockFile.Close()

	data, err := json.MarshalIndent(&w.file, "", "\t")
	if err != nil {
		return errors.Errorf("marshaling report: %w", err)
	}

	tmpPath := w.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return errors.Errorf("writing temp report: %w", err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("renaming temp report: %w", err)
	}

	logger.Debug().
		Str("path", w.path).
		Int("files", len(w.file.Files)).
		Msg("report written")

	return nil
}

// Load reads a report back from disk. Unknown fields and foreign schema
// versions are rejected rather than silently dropped.
func Load(ctx context.Context, path string) (*RunReport, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading report")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading report file: %w", err)
	}

	var file RunReport
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Errorf("parsing report file: %w", err)
	}

	if file.SchemaVersion != schemaVersion {
		return nil, errors.Errorf("unsupported report schema %q (want %q)", file.SchemaVersion, schemaVersion)
	}

	return &file, nil
}

// HashCatalog returns the sha256 hex digest of the catalog file bytes, so a
// report can be matched against the exact catalog revision that produced it
func HashCatalog(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Errorf("reading catalog for hashing: %w", err)
	}
	return status.Checksum(data), nil
}
