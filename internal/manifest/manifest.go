// Package manifest records what a migration run produced.
package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"github.com/natefinch/atomic"

	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
)

// RunManifest is a complete record of a run's inputs and outputs.
type RunManifest struct {
	ID        string          `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Inputs    Inputs          `json:"inputs"`
	Documents []DocumentEntry `json:"documents"`
	Sections  []SectionEntry  `json:"sections"`
	Status    string          `json:"status"`
	Duration  int64           `json:"duration_ms"`
}

// Inputs captures the settings a run was started with.
type Inputs struct {
	MkDocsConfig string `json:"mkdocs_config"`
	ConfigHash   string `json:"config_hash"`
	Source       string `json:"source"`
	Dest         string `json:"dest"`
	AssetsFolder string `json:"assets_folder"`
}

// DocumentEntry is one converted document.
type DocumentEntry struct {
	Source      string `json:"source"`
	Dest        string `json:"dest"`
	Title       string `json:"title"`
	Weight      int    `json:"weight"`
	InNav       bool   `json:"in_nav"`
	Fingerprint string `json:"fingerprint"`
}

// SectionEntry is one written section index.
type SectionEntry struct {
	Dir    string `json:"dir"`
	Title  string `json:"title"`
	Weight int    `json:"weight"`
}

// ConfigHash returns the hex sha256 of the raw mkdocs configuration.
func ConfigHash(raw []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(raw))
}

// Fingerprint returns the mdfp fingerprint of a written page. page must start
// with a `+++` front matter block; a page without one is hashed as body only.
func Fingerprint(page string) string {
	fm, body := "", page
	if rest, ok := strings.CutPrefix(page, "+++\n"); ok {
		if i := strings.Index(rest, "\n+++\n"); i >= 0 {
			fm = rest[:i]
			body = strings.TrimPrefix(rest[i+len("\n+++\n"):], "\n")
		}
	}
	return mdfp.CalculateFingerprintFromParts(fm, body)
}

// Sort orders documents and sections by path so manifests diff cleanly.
func (m *RunManifest) Sort() {
	sort.Slice(m.Documents, func(i, j int) bool { return m.Documents[i].Source < m.Documents[j].Source })
	sort.Slice(m.Sections, func(i, j int) bool { return m.Sections[i].Dir < m.Sections[j].Dir })
}

// ToJSON serializes the manifest to JSON.
func (m *RunManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*RunManifest, error) {
	var m RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the inputs and the produced documents.
// Two runs over identical inputs hash the same regardless of id or timing.
func (m *RunManifest) Hash() (string, error) {
	hashInput := struct {
		Inputs    Inputs          `json:"inputs"`
		Documents []DocumentEntry `json:"documents"`
		Sections  []SectionEntry  `json:"sections"`
	}{
		Inputs:    m.Inputs,
		Documents: m.Documents,
		Sections:  m.Sections,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// Write stores the manifest at path, replacing any previous file atomically.
func (m *RunManifest) Write(path string) error {
	data, err := m.ToJSON()
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryInternal, "encode manifest").Build()
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write manifest").
			WithContext("path", path).
			Build()
	}
	return nil
}
