package baseline

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// ErrBaselineNotFound is returned when a baseline doesn't exist.
var ErrBaselineNotFound = errors.New("baseline not found")

// ErrInvalidName is returned for baseline names unsafe as file names.
var ErrInvalidName = errors.New("invalid baseline name")

// nameRegex limits baseline names to filesystem-safe characters.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Store manages baseline persistence.
type Store struct {
	Dir string // base directory for baselines
}

// NewStore creates a store with the given directory.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// DefaultDir returns the default baseline directory (~/.recomp/baselines).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".recomp/baselines"
	}
	return filepath.Join(home, ".recomp", "baselines")
}

// Save stores a baseline, overwriting any previous one with the same name.
func (s *Store) Save(b Baseline) error {
	if !nameRegex.MatchString(b.Name) {
		return ErrInvalidName
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path(b.Name), data, 0644)
}

// Load retrieves a baseline by name.
func (s *Store) Load(name string) (Baseline, error) {
	if !nameRegex.MatchString(name) {
		return Baseline{}, ErrInvalidName
	}

	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Baseline{}, ErrBaselineNotFound
		}
		return Baseline{}, err
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return Baseline{}, err
	}

	return b, nil
}

// List returns all stored baselines as summaries, sorted by name.
func (s *Store) List() ([]Summary, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Summary{}, nil
		}
		return nil, err
	}

	var summaries []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.Dir, entry.Name()))
		if err != nil {
			continue // skip unreadable files
		}

		var b Baseline
		if err := json.Unmarshal(data, &b); err != nil {
			continue // skip invalid JSON
		}

		summaries = append(summaries, Summary{
			Name:        b.Name,
			ResultShape: b.ResultShape,
			Timestamp:   b.Timestamp,
		})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries, nil
}

// Delete removes a baseline by name.
func (s *Store) Delete(name string) error {
	if !nameRegex.MatchString(name) {
		return ErrInvalidName
	}

	err := os.Remove(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrBaselineNotFound
		}
		return err
	}

	return nil
}

// path returns the file path for a baseline name.
func (s *Store) path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}
