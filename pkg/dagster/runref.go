// Package dagster provides a client for fetching run error logs from a
// Dagster Cloud GraphQL API.
package dagster

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrMalformedRunURL indicates a run URL without a /runs/<id> path segment.
var ErrMalformedRunURL = errors.New("run URL does not contain /runs/<id>")

var runIDPattern = regexp.MustCompile(`/runs/([^/?#]+)`)

// RunRef identifies one run together with the deployment that owns it.
type RunRef struct {
	Scheme        string // "https" or "http"
	HostAndPrefix string // host plus any path prefix before /runs/, no trailing slash
	RunID         string // opaque run identifier from the URL path
}

// Endpoint returns the deployment address, e.g. "https://org.dagster.cloud/prod".
func (r RunRef) Endpoint() string {
	return fmt.Sprintf("%s://%s", r.Scheme, r.HostAndPrefix)
}

// GraphQLURL returns the deployment's GraphQL endpoint.
func (r RunRef) GraphQLURL() string {
	return r.Endpoint() + "/graphql"
}

// ParseRunURL extracts the run ID and deployment address from a Dagster
// Cloud run URL. A deployment is addressed either by a dedicated subdomain
// (org.dagster.cloud) or by a path prefix under a shared host
// (dagster.example.com/org/prod); any path segments before /runs/ are folded
// into HostAndPrefix so both shapes resolve the same way downstream.
func ParseRunURL(runURL string) (RunRef, error) {
	parsed, err := url.Parse(runURL)
	if err != nil {
		return RunRef{}, fmt.Errorf("parse run URL %q: %w", runURL, err)
	}

	m := runIDPattern.FindStringSubmatch(parsed.Path)
	if m == nil {
		return RunRef{}, fmt.Errorf("%w: %s", ErrMalformedRunURL, runURL)
	}

	prefix, _, _ := strings.Cut(parsed.Path, "/runs/")
	prefix = strings.TrimRight(prefix, "/")

	return RunRef{
		Scheme:        parsed.Scheme,
		HostAndPrefix: parsed.Host + prefix,
		RunID:         m[1],
	}, nil
}
