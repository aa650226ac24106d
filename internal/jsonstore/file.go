package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/tgienger/todo/internal/models"
)

const (
	maxRotatingBackups = 10
	stateVersion       = 1
)

var (
	errCorrupt      = errors.New("corrupt state file")
	errNoValidState = errors.New("no valid backup found")
)

// fileState is the on-disk document
type fileState struct {
	Version  int               `json:"version"`
	Tasks    []models.Task     `json:"tasks"`
	Settings map[string]string `json:"settings,omitempty"`
}

func emptyState() fileState {
	return fileState{
		Version:  stateVersion,
		Tasks:    []models.Task{},
		Settings: map[string]string{},
	}
}

// normalize fills what older or hand-edited documents may lack
func (s *fileState) normalize() {
	if s.Version == 0 {
		s.Version = stateVersion
	}
	if s.Tasks == nil {
		s.Tasks = []models.Task{}
	}
	if s.Settings == nil {
		s.Settings = map[string]string{}
	}
	for i := range s.Tasks {
		if !s.Tasks[i].Priority.Valid() {
			s.Tasks[i].Priority = models.PriorityMedium
		}
		if !s.Tasks[i].Category.Valid() {
			s.Tasks[i].Category = models.CategoryOther
		}
	}
}

func (s fileState) clone() fileState {
	out := s
	out.Tasks = slices.Clone(s.Tasks)
	out.Settings = make(map[string]string, len(s.Settings))
	for k, v := range s.Settings {
		out.Settings[k] = v
	}
	return out
}

// readState decodes the document at path. A missing file is an empty state;
// undecodable content is errCorrupt.
func readState(path string) (fileState, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return emptyState(), nil
	}
	if err != nil {
		return fileState{}, err
	}

	var s fileState
	if err := json.Unmarshal(data, &s); err != nil {
		return fileState{}, fmt.Errorf("%w: %s: %v", errCorrupt, filepath.Base(path), err)
	}
	s.normalize()
	return s, nil
}

// writeTo replaces the document at path through a temp file and a rename
func (s fileState) writeTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	err = enc.Encode(s)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// openState loads the document, falling back to the newest readable backup
// when it is corrupt. The message is empty unless a recovery happened.
func openState(path string) (fileState, string, error) {
	s, err := readState(path)
	if !errors.Is(err, errCorrupt) {
		return s, "", err
	}

	moved, err := quarantine(path)
	if err != nil {
		return fileState{}, "", fmt.Errorf("move corrupt file: %w", err)
	}
	note := ""
	if moved != "" {
		note = fmt.Sprintf(" (bad file moved to %s)", filepath.Base(moved))
	}

	b := backups{path: path}
	s, from, err := b.newestValid()
	switch {
	case err == nil:
		note = "recovered corrupt state from " + filepath.Base(from) + note
	case errors.Is(err, errNoValidState):
		s = emptyState()
		note = "corrupt state without a valid backup; started empty" + note
	default:
		return fileState{}, "", fmt.Errorf("inspect backups: %w", err)
	}

	if err := s.writeTo(path); err != nil {
		return fileState{}, "", fmt.Errorf("rewrite state: %w", err)
	}
	return s, note, nil
}

// saveState snapshots the current document, then writes s over it
func saveState(path string, s fileState) error {
	if err := (backups{path: path}).snapshot(); err != nil {
		return err
	}
	return s.writeTo(path)
}

// backups are the copies kept next to a document: path.bak holds the
// previous version and path.bak.<timestamp> a bounded history
type backups struct {
	path string
}

func (b backups) latest() string { return b.path + ".bak" }

// rotating lists the timestamped copies, oldest first
func (b backups) rotating() ([]string, error) {
	files, err := filepath.Glob(b.path + ".bak.*")
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}

// snapshot copies the current document into the backup set and prunes the
// history. Nothing happens before the first write.
func (b backups) snapshot() error {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(b.latest(), data, 0o644); err != nil {
		return err
	}
	stamped := b.path + ".bak." + time.Now().UTC().Format("20060102-150405.000000000")
	if err := os.WriteFile(stamped, data, 0o644); err != nil {
		return err
	}

	files, err := b.rotating()
	if err != nil || len(files) <= maxRotatingBackups {
		return err
	}
	for _, old := range files[:len(files)-maxRotatingBackups] {
		if err := os.Remove(old); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// newestValid returns the most recent backup that still decodes
func (b backups) newestValid() (fileState, string, error) {
	history, err := b.rotating()
	if err != nil {
		return fileState{}, "", err
	}
	slices.Reverse(history)
	candidates := append([]string{b.latest()}, history...)

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if s, err := readState(candidate); err == nil {
			return s, candidate, nil
		}
	}
	return fileState{}, "", errNoValidState
}

// quarantine renames a corrupt document to name.corrupt-<timestamp>.ext
func quarantine(path string) (string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	ext := filepath.Ext(path)
	moved := fmt.Sprintf("%s.corrupt-%s%s",
		strings.TrimSuffix(path, ext), time.Now().UTC().Format("20060102-150405"), ext)
	if err := os.Rename(path, moved); err != nil {
		return "", err
	}
	return moved, nil
}
