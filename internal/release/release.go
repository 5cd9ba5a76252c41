// Package release prepares a new versioned copy of a project's documentation:
// it snapshots the unreleased tree, writes the version landing page, records the
// version in the project's versions file and points the project index at it.
package release

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"golang.org/x/mod/semver"

	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/logfields"
	"git.home.luguber.info/inful/docmigrate/internal/retry"
	"git.home.luguber.info/inful/docmigrate/internal/util/fsutil"
)

// UnreleasedDir is the version directory holding work in progress.
const UnreleasedDir = "unreleased"

const landingTemplate = `+++
title = "%[1]s %[2]s Documentation"
linkTitle = "%[2]s"
weight = 1

[[cascade]]
type = "docs"

  [cascade.params]
  project = "%[3]s"
  project_version = "%[2]s"
  sidebar_root_for = "children"
+++

Welcome to the %[1]s %[2]s documentation.
`

// Project describes a documented project.
type Project struct {
	Name     string
	LongName string
	// GoModURL is a format string taking the release tag.
	GoModURL string
}

// Projects are the projects the helper knows about.
var Projects = map[string]Project{
	"eso": {
		Name:     "eso",
		LongName: "External-Secrets Operator",
		GoModURL: "https://raw.githubusercontent.com/external-secrets/external-secrets/%s/go.mod",
	},
	"reloader": {
		Name:     "reloader",
		LongName: "Reloader Operator",
		GoModURL: "https://raw.githubusercontent.com/external-secrets/reloader/%s/go.mod",
	},
}

// Options is one release request.
type Options struct {
	Project Project
	Version string
	// ReleaseDate defaults to today (YYYY-MM-DD).
	ReleaseDate string
	// TestedK8sVersions is derived from the release's go.mod when empty.
	TestedK8sVersions []string
	// SiteRoot is the Hugo site holding content/ and data/.
	SiteRoot   string
	HTTPClient *http.Client
	// Retry applies to the go.mod download. Zero means retry.DefaultPolicy.
	Retry retry.Policy
}

// Result reports what Prepare changed.
type Result struct {
	PreviousLatest string
	VersionDir     string
	VersionsFile   string
	ProjectIndex   string
}

// Prepare creates the release. The versions file is only rewritten after all
// checks passed.
func Prepare(ctx context.Context, opts Options) (*Result, error) {
	if !semver.IsValid(opts.Version) {
		return nil, derrors.ValidationError("version must be a semantic version tag such as v0.15").
			WithContext("version", opts.Version).
			Build()
	}
	if opts.ReleaseDate == "" {
		opts.ReleaseDate = time.Now().Format(time.DateOnly)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Retry == (retry.Policy{}) {
		opts.Retry = retry.DefaultPolicy()
	}

	baseDir := filepath.Join(opts.SiteRoot, "content", "en", opts.Project.Name+"-docs")
	res := &Result{
		VersionDir:   filepath.Join(baseDir, opts.Version),
		VersionsFile: filepath.Join(opts.SiteRoot, "data", opts.Project.Name+"_versions.toml"),
		ProjectIndex: filepath.Join(baseDir, "_index.md"),
	}

	if _, err := os.Stat(res.VersionDir); err == nil {
		return nil, derrors.ReleaseError("version directory already exists").
			WithContext("path", res.VersionDir).
			UserAction().
			Build()
	}
	if _, err := os.Stat(res.VersionsFile); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryNotFound, "data file not found").
			WithContext("path", res.VersionsFile).
			Build()
	}
	versions, err := ReadVersions(res.VersionsFile)
	if err != nil {
		return nil, err
	}
	if idx := versions.Latest(); idx >= 0 {
		res.PreviousLatest = versions.Versions[idx].Tag
	}

	tested := opts.TestedK8sVersions
	if len(tested) == 0 {
		slog.Info("No tested Kubernetes versions given; deriving them from the release go.mod")
		k8s, err := testedFromGoMod(ctx, opts)
		if err != nil {
			return nil, err
		}
		tested = []string{k8s}
	}

	if err := versions.Promote(Version{
		Version:           opts.Version,
		URL:               fmt.Sprintf("/%s-docs/%s/", opts.Project.Name, opts.Version),
		Tag:               opts.Version,
		ReleaseDate:       opts.ReleaseDate,
		TestedK8sVersions: tested,
	}); err != nil {
		return nil, err
	}

	if err := fsutil.CopyDir(filepath.Join(baseDir, UnreleasedDir), res.VersionDir); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "copy unreleased content").
			WithContext("path", res.VersionDir).
			Build()
	}
	landing := fmt.Sprintf(landingTemplate, opts.Project.LongName, opts.Version, opts.Project.Name)
	if err := atomic.WriteFile(filepath.Join(res.VersionDir, "_index.md"), strings.NewReader(landing)); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "write version landing page").Build()
	}
	if err := UpdateProjectIndex(res.ProjectIndex, opts.Project.Name, opts.Version); err != nil {
		return nil, err
	}
	if err := WriteVersions(res.VersionsFile, versions); err != nil {
		return nil, err
	}

	slog.Info("Release prepared",
		slog.String("version", opts.Version),
		slog.String("previous", res.PreviousLatest),
		logfields.Path(res.VersionDir))
	return res, nil
}

func testedFromGoMod(ctx context.Context, opts Options) (string, error) {
	url := fmt.Sprintf(opts.Project.GoModURL, opts.Version)
	var body []byte
	err := opts.Retry.Do(ctx, "fetch go.mod", func(ctx context.Context) error {
		var fetchErr error
		body, fetchErr = FetchGoMod(ctx, opts.HTTPClient, url)
		return fetchErr
	})
	if err != nil {
		return "", err
	}
	clientGo, err := ParseClientGoVersion(string(body))
	if err != nil {
		return "", err
	}
	return KubernetesVersion(clientGo), nil
}

// UpdateProjectIndex points the "[latest version](...)" link of the project index
// at version.
func UpdateProjectIndex(path, project, version string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "read project index").
			WithContext("path", path).
			Build()
	}
	re := regexp.MustCompile(`\[latest version\]\(/` + regexp.QuoteMeta(project) + `-docs/v[\d.]+/\)`)
	replacement := fmt.Sprintf("[latest version](/%s-docs/%s/)", project, version)
	updated := re.ReplaceAllLiteralString(string(data), replacement)

	if err := atomic.WriteFile(path, strings.NewReader(updated)); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write project index").
			WithContext("path", path).
			Build()
	}
	return nil
}
