package release

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/mod/semver"

	derrors "git.home.luguber.info/inful/docmigrate/internal/foundation/errors"
)

const clientGoModule = "k8s.io/client-go"

// FetchGoMod downloads a go.mod file.
func FetchGoMod(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryNetwork, "build go.mod request").Build()
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryNetwork, "fetch go.mod").
			WithRetry(derrors.RetryBackoff).
			WithContext("url", url).
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("fetch go.mod: HTTP %d", resp.StatusCode)
		b := derrors.NewError(derrors.CategoryNetwork, msg)
		if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
			b = derrors.NetworkError(msg)
		}
		return nil, b.WithContext("url", url).Build()
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryNetwork, "read go.mod").Build()
	}
	return body, nil
}

// ParseClientGoVersion returns the k8s.io/client-go version required by a go.mod.
func ParseClientGoVersion(goMod string) (string, error) {
	for _, line := range strings.Split(goMod, "\n") {
		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) >= 2 && fields[0] == clientGoModule {
			return fields[1], nil
		}
		// single-line form: require k8s.io/client-go v0.35.0
		if len(fields) >= 3 && fields[0] == "require" && fields[1] == clientGoModule {
			return fields[2], nil
		}
	}
	return "", derrors.ReleaseError(clientGoModule + " not found in go.mod").Build()
}

// KubernetesVersion maps a client-go version (v0.X.Y) to the Kubernetes minor it
// tracks (v1.X). Anything that is not a v0 version is returned unchanged.
func KubernetesVersion(clientGo string) string {
	normalized := "v" + strings.TrimPrefix(clientGo, "v")
	major := semver.Major(normalized)
	if major != "v0" {
		return clientGo
	}
	return strings.Replace(semver.MajorMinor(normalized), major, "v1", 1)
}
