package release

import (
	"bytes"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/natefinch/atomic"

	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
)

const latestSuffix = " (latest)"

// Version is one entry of data/<project>_versions.toml.
type Version struct {
	Version           string   `toml:"version"`
	URL               string   `toml:"url"`
	Tag               string   `toml:"tag"`
	Latest            bool     `toml:"latest"`
	ReleaseDate       string   `toml:"release_date"`
	TestedK8sVersions []string `toml:"tested_k8s_versions"`
	EndOfLife         string   `toml:"end_of_life"`
}

// VersionsData is the whole versions file.
type VersionsData struct {
	Versions []Version `toml:"versions"`
}

// ReadVersions decodes a versions file.
func ReadVersions(path string) (*VersionsData, error) {
	var data VersionsData
	if _, err := toml.DecodeFile(path, &data); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryRelease, "read versions file").
			WithContext("path", path).
			Build()
	}
	return &data, nil
}

// WriteVersions encodes data into path atomically.
func WriteVersions(path string, data *VersionsData) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(data); err != nil {
		return derrors.WrapError(err, derrors.CategoryInternal, "encode versions file").Build()
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write versions file").
			WithContext("path", path).
			Build()
	}
	return nil
}

// Latest returns the index of the entry marked latest, or -1.
func (d *VersionsData) Latest() int {
	for i := range d.Versions {
		if d.Versions[i].Latest {
			return i
		}
	}
	return -1
}

// Has reports whether tag was already released.
func (d *VersionsData) Has(tag string) bool {
	for _, v := range d.Versions {
		if v.Tag == tag || strings.TrimSuffix(v.Version, latestSuffix) == tag {
			return true
		}
	}
	return false
}

// Promote demotes the current latest entry and prepends v as the new latest.
func (d *VersionsData) Promote(v Version) error {
	idx := d.Latest()
	if idx < 0 {
		return derrors.ReleaseError("no current latest version found in data file").Build()
	}
	if d.Has(v.Tag) {
		return derrors.ReleaseError("this release already exists").
			WithContext("version", v.Tag).
			UserAction().
			Build()
	}
	d.Versions[idx].Latest = false
	d.Versions[idx].Version = strings.TrimSuffix(d.Versions[idx].Version, latestSuffix)

	v.Latest = true
	if !strings.HasSuffix(v.Version, latestSuffix) {
		v.Version += latestSuffix
	}
	d.Versions = append([]Version{v}, d.Versions...)
	return nil
}
