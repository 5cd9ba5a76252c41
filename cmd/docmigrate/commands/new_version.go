package commands

import (
	"fmt"
	"sort"
	"strings"

	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
	"git.home.luguber.info/inful/docmigrate/internal/release"
)

// NewVersionCmd implements the 'new-version' command.
type NewVersionCmd struct {
	Project           string `required:"" help:"Project to release (eso|reloader)"`
	Version           string `arg:"" help:"Version to release, for example v0.15"`
	ReleaseDate       string `name:"release-date" help:"Release date (YYYY-MM-DD, default today)"`
	TestedK8sVersions string `name:"tested-k8s-versions" help:"Comma separated Kubernetes versions (default derived from the release go.mod)"`
	SiteRoot          string `name:"site-root" help:"Hugo site root" default:"." type:"path"`
}

func (n *NewVersionCmd) Run(g *Global, _ *CLI) error {
	project, ok := release.Projects[n.Project]
	if !ok {
		return derrors.ValidationError(fmt.Sprintf("unknown project %q (known: %s)", n.Project, knownProjects())).Build()
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := release.Prepare(ctx, release.Options{
		Project:           project,
		Version:           n.Version,
		ReleaseDate:       n.ReleaseDate,
		TestedK8sVersions: splitList(n.TestedK8sVersions),
		SiteRoot:          n.SiteRoot,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.Stdout, "Released %s %s (previous latest %s) into %s\n",
		project.LongName, n.Version, res.PreviousLatest, res.VersionDir)
	return err
}

func knownProjects() string {
	names := make([]string, 0, len(release.Projects))
	for name := range release.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
