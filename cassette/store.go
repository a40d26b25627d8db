package cassette

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotFound is returned by Load when no cassette file exists at the given
// path.
var ErrNotFound = errors.New("cassette not found")

// cassetteFile is the on-disk representation. Bodies serialize as base64 and
// are omitted when absent; header map keys come out sorted, which keeps the
// files diff-friendly.
type cassetteFile struct {
	Name         string        `json:"name"`
	RecordMode   Mode          `json:"record_mode"`
	Matcher      string        `json:"matcher"`
	Interactions []Interaction `json:"interactions"`
}

// FilePath returns the storage path for a cassette name inside a library
// directory.
func FilePath(dir, name string) string {
	return filepath.Join(dir, name+".json")
}

// Load reads a cassette file previously written by Save. The persisted
// record mode and matcher identity are validated and re-applied exactly;
// an unknown mode or matcher fails the load rather than silently falling
// back to a default.
func Load(path string) (*Cassette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read cassette: %w", err)
	}

	var f cassetteFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse cassette %s: %w", path, err)
	}
	mode, err := ParseMode(string(f.RecordMode))
	if err != nil {
		return nil, fmt.Errorf("cassette %s: %w", path, err)
	}
	matcher, err := ParseMatcher(f.Matcher)
	if err != nil {
		return nil, fmt.Errorf("cassette %s: %w", path, err)
	}

	c := New(f.Name, mode, matcher)
	for _, it := range f.Interactions {
		it.normalize()
		c.interactions = append(c.interactions, it)
	}
	return c, nil
}

// Save writes the cassette to path, creating parent directories as needed.
// The whole session is written in one shot; interactions recorded while the
// cassette was inserted are batched into this single write.
func (c *Cassette) Save(path string) error {
	c.mu.Lock()
	f := cassetteFile{
		Name:         c.name,
		RecordMode:   c.mode,
		Matcher:      c.matcher.Identity(),
		Interactions: append([]Interaction(nil), c.interactions...),
	}
	c.mu.Unlock()

	if f.Interactions == nil {
		f.Interactions = []Interaction{}
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cassette %s: %w", c.name, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create cassette directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cassette %s: %w", c.name, err)
	}
	return nil
}
