package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/TobiSchelling/weeklynotes/internal/week"
)

// IndexFile is the manifest's file name inside the store.
const IndexFile = "index.json"

// ErrNotFound is returned when a week has no report.
var ErrNotFound = errors.New("report not found")

// Store keeps reports as JSON files in one directory.
type Store struct {
	dir string
}

// Open creates the directory if needed and returns a store on it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute-or-relative path of a file in the store.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Save writes the report, then records it in the index. It returns the
// report's path. If the index cannot be updated the report file is put
// back the way it was.
func (s *Store) Save(r *Report) (string, error) {
	path := s.Path(r.FileName())
	previous, readErr := os.ReadFile(path)

	if _, err := s.WriteReport(r); err != nil {
		return "", err
	}
	if err := s.UpdateIndex(r.Entry()); err != nil {
		if readErr == nil {
			writeFile(path, previous)
		} else {
			os.Remove(path)
		}
		return "", err
	}
	return path, nil
}

// WriteReport writes <week_start>.json, replacing any previous version.
func (s *Store) WriteReport(r *Report) (string, error) {
	path := s.Path(r.FileName())
	if err := writeJSON(path, r); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// UpdateIndex replaces any entry for the same week and keeps the weeks
// sorted newest first.
func (s *Store) UpdateIndex(entry IndexEntry) error {
	idx, err := s.LoadIndex()
	if err != nil {
		return err
	}

	weeks := make([]IndexEntry, 0, len(idx.Weeks)+1)
	for _, e := range idx.Weeks {
		if e.WeekStart != entry.WeekStart {
			weeks = append(weeks, e)
		}
	}
	weeks = append(weeks, entry)
	sort.SliceStable(weeks, func(i, j int) bool {
		return weeks[i].WeekStart > weeks[j].WeekStart
	})
	idx.Weeks = weeks

	if err := writeJSON(s.Path(IndexFile), idx); err != nil {
		return fmt.Errorf("writing index: %w", err)
	}
	return nil
}

// LoadIndex reads index.json. A missing index is an empty one.
func (s *Store) LoadIndex() (*Index, error) {
	data, err := os.ReadFile(s.Path(IndexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return &Index{Weeks: []IndexEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}
	if idx.Weeks == nil {
		idx.Weeks = []IndexEntry{}
	}
	return &idx, nil
}

// LoadReport reads the report for a YYYY-MM-DD week start.
func (s *Store) LoadReport(weekStart string) (*Report, error) {
	if _, err := week.Starting(weekStart); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(weekStart + ".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", weekStart, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report %s: %w", weekStart, err)
	}
	return &r, nil
}

// WriteMarkdown writes the markdown rendering of r to path. An empty path
// selects summary-<week_start>.md in the store.
func (s *Store) WriteMarkdown(r *Report, path string) (string, error) {
	if path == "" {
		path = s.Path("summary-" + r.WeekStart + ".md")
	}
	if err := writeFile(path, []byte(r.Markdown())); err != nil {
		return "", fmt.Errorf("writing markdown: %w", err)
	}
	return path, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, append(data, '\n'))
}

// writeFile replaces path through a temp file in the same directory.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
