// Package bundle persists named collections of column summaries and
// assembles them into a single prompt context.
package bundle

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/listsum/internal/utils"
)

const bundleFileName = "bundle.json"

var (
	// ErrBundleNotFound indicates no bundle.json exists in the bundle directory.
	ErrBundleNotFound = errors.New("bundle not found")
	// ErrEntryNotFound indicates no entry matches an id or id prefix.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrEmptyBundle indicates a context was requested from a bundle without entries.
	ErrEmptyBundle = errors.New("no summaries added to bundle")
)

// Bundle is a named set of summaries persisted as bundle.json.
type Bundle struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Instructions string            `json:"instructions"`
	Entries      map[string]*Entry `json:"entries"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	// Not serialized: on-disk location of the bundle.json
	rootDir string `json:"-"`
}

// Dir returns the directory holding the named bundle.
func Dir(bundlesDir, name string) string {
	return filepath.Join(bundlesDir, name)
}

// New constructs an in-memory bundle. Call Save() to persist.
func New(name, description, rootDir string) *Bundle {
	now := time.Now()
	return &Bundle{
		Name:        name,
		Description: description,
		Entries:     make(map[string]*Entry),
		CreatedAt:   now,
		UpdatedAt:   now,
		rootDir:     rootDir,
	}
}

// Load reads bundle.json from dir.
func Load(dir string) (*Bundle, error) {
	path := filepath.Join(dir, bundleFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrBundleNotFound, dir)
		}
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	var bd Bundle
	if err := json.Unmarshal(b, &bd); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	if bd.Entries == nil {
		bd.Entries = make(map[string]*Entry)
	}
	bd.rootDir = dir
	return &bd, nil
}

// List loads every bundle under bundlesDir, sorted by name.
// Directories without a bundle.json are skipped.
func List(bundlesDir string) ([]*Bundle, error) {
	des, err := os.ReadDir(bundlesDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read bundles dir: %w", err)
	}
	var out []*Bundle
	for _, de := range des {
		if !de.IsDir() {
			continue
		}
		bd, err := Load(filepath.Join(bundlesDir, de.Name()))
		if err != nil {
			if errors.Is(err, ErrBundleNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, bd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// RootDir returns the on-disk bundle directory path.
func (b *Bundle) RootDir() string { return b.rootDir }

// Save writes bundle.json using atomic write.
func (b *Bundle) Save() error {
	if b.rootDir == "" {
		return errors.New("bundle root directory not set")
	}
	if err := utils.EnsureDir(b.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	b.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(b)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(b.rootDir, bundleFileName), data)
}

// AddSummary stores e under a new id, filling in its token estimate and time.
func (b *Bundle) AddSummary(e Entry) *Entry {
	e.ID = uuid.NewString()
	e.Tokens = utils.CountTokens(e.Summary)
	if e.AddedAt.IsZero() {
		e.AddedAt = time.Now()
	}
	if b.Entries == nil {
		b.Entries = make(map[string]*Entry)
	}
	b.Entries[e.ID] = &e
	b.UpdatedAt = time.Now()
	return &e
}

// Remove deletes the entry whose id equals or uniquely starts with idPrefix.
func (b *Bundle) Remove(idPrefix string) (*Entry, error) {
	idPrefix = strings.TrimSpace(idPrefix)
	if idPrefix == "" {
		return nil, fmt.Errorf("%w: empty id", ErrEntryNotFound)
	}
	if e, ok := b.Entries[idPrefix]; ok {
		delete(b.Entries, idPrefix)
		b.UpdatedAt = time.Now()
		return e, nil
	}
	var match *Entry
	for id, e := range b.Entries {
		if !strings.HasPrefix(id, idPrefix) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("id prefix %q is ambiguous", idPrefix)
		}
		match = e
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, idPrefix)
	}
	delete(b.Entries, match.ID)
	b.UpdatedAt = time.Now()
	return match, nil
}

func (b *Bundle) SetInstructions(instructions string) {
	b.Instructions = strings.TrimSpace(instructions)
	b.UpdatedAt = time.Now()
}

// Ordered returns entries by insertion time, then source, label and id.
func (b *Bundle) Ordered() []*Entry {
	out := make([]*Entry, 0, len(b.Entries))
	for _, e := range b.Entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, c := out[i], out[j]
		if !a.AddedAt.Equal(c.AddedAt) {
			return a.AddedAt.Before(c.AddedAt)
		}
		if a.Source != c.Source {
			return a.Source < c.Source
		}
		if a.Label() != c.Label() {
			return a.Label() < c.Label()
		}
		return a.ID < c.ID
	})
	return out
}

// Tokens sums the token estimates of all entries.
func (b *Bundle) Tokens() int {
	n := 0
	for _, e := range b.Entries {
		n += e.Tokens
	}
	return n
}

// BuildContext assembles the prompt context and returns it with its token estimate.
func (b *Bundle) BuildContext() (string, int, error) {
	if b == nil {
		return "", 0, errors.New("bundle is nil")
	}
	if len(b.Entries) == 0 {
		return "", 0, ErrEmptyBundle
	}

	var sb strings.Builder
	sb.WriteString("[INSTRUCTIONS]\n")
	sb.WriteString(b.Instructions)
	sb.WriteString("\n\n")

	sb.WriteString("[COLUMN SUMMARIES]\n")
	for _, e := range b.Ordered() {
		sb.WriteString(sectionHeader(e))
		sb.WriteString("\n")
		if e.Description != "" {
			sb.WriteString("Description: ")
			sb.WriteString(e.Description)
			sb.WriteString("\n")
		}
		sb.WriteString(e.Summary)
		sb.WriteString("\n\n")
	}

	sb.WriteString("[TASK]\n")
	sb.WriteString("Based on the column summaries above, please: ")
	sb.WriteString(b.Instructions)
	sb.WriteString("\n")

	out := sb.String()
	return out, utils.CountTokens(out), nil
}

// Breakdown estimates tokens per section, keyed by section header.
func (b *Bundle) Breakdown() map[string]int {
	sections := map[string]string{"[INSTRUCTIONS]": b.Instructions}
	for _, e := range b.Ordered() {
		sections[sectionHeader(e)] = e.Summary
	}
	return utils.TokenBreakdown(sections)
}

func sectionHeader(e *Entry) string {
	return fmt.Sprintf("--- Column: %s (%s) ---", e.Label(), e.Source)
}
