package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/chanforge/chanforge/internal/config"
	"github.com/chanforge/chanforge/internal/depscan"
	"github.com/chanforge/chanforge/internal/document"
	"github.com/chanforge/chanforge/internal/fetcher"
	"github.com/chanforge/chanforge/internal/security"
	"github.com/chanforge/chanforge/internal/store"
)

// maxDepDepth bounds recursive dependency fetching. Plugin import chains
// deeper than this are circular or pathological.
const maxDepDepth = 3

// mirrorer localizes a site's plugin resources into the content store and
// rewrites the site's references to mirror-relative paths.
type mirrorer struct {
	fetch         fetcher.Fetcher
	store         *store.Store
	scanner       *security.Scanner
	onDecodeError string

	// seen dedupes dependency fetches across sites within one build
	seen map[string]struct{}
}

func newMirrorer(f fetcher.Fetcher, st *store.Store, sc *security.Scanner, onDecodeError string) *mirrorer {
	return &mirrorer{
		fetch:         f,
		store:         st,
		scanner:       sc,
		onDecodeError: onDecodeError,
		seen:          make(map[string]struct{}),
	}
}

// mirrorOutcome is what mirroring one site produced
type mirrorOutcome struct {
	// findings are the security scan results for every mirrored resource
	findings []security.Finding

	// excluded means the site cannot ship and must be dropped from the merge
	excluded bool

	// excludeReason explains the exclusion
	excludeReason string
}

// mirrorSite localizes the plugin resources of one site entry. The entry is
// mutated in place: api and jar references that were mirrored point at their
// store-relative paths afterwards.
func (m *mirrorer) mirrorSite(ctx context.Context, site *document.SiteEntry, baseURL string) *mirrorOutcome {
	out := &mirrorOutcome{}
	kind := document.Classify(site)

	switch kind {
	case document.KindScript, document.KindInterpreted:
		m.mirrorAPIResource(ctx, site, kind, baseURL, out)
	case document.KindCompiled:
		// A csp_ api string names an entry-point class inside a jar, not a
		// fetchable resource. Entries without their own jar resolve against
		// the document's spider jar and carry nothing to mirror.
		if strings.Contains(site.API, ".jar") {
			m.mirrorCompiled(ctx, site, site.API, baseURL, out, func(rel string) { site.API = rel })
		}
	}
	if out.excluded {
		return out
	}

	if site.Jar != "" {
		m.mirrorCompiled(ctx, site, site.Jar, baseURL, out, func(rel string) { site.Jar = rel })
		if out.excluded {
			return out
		}
	}

	if ext := site.ExtString(); ext != "" {
		m.mirrorExt(ctx, site, ext, baseURL, out)
	}

	return out
}

// mirrorExt localizes a script-valued ext reference. Non-reference ext
// payloads (inline options, plain strings) pass through untouched, and a
// missing ext resource is advisory.
func (m *mirrorer) mirrorExt(ctx context.Context, site *document.SiteEntry, ext, baseURL string, out *mirrorOutcome) {
	kind := kindForRef(ext)
	if kind != document.KindScript && kind != document.KindInterpreted {
		return
	}

	target, err := resolveTarget(ext, baseURL)
	if err != nil {
		slog.Warn("Cannot resolve ext reference", "site", site.Key, "ext", ext, "error", err)
		return
	}

	body, err := m.fetch.Fetch(ctx, target)
	if err != nil {
		slog.Warn("Ext resource unreachable, keeping original reference", "site", site.Key, "ext", target, "error", err)
		return
	}

	out.findings = append(out.findings, m.scanner.Scan(site.Key+":"+path.Base(target), body, kind)...)

	_, rel, err := m.store.Put(body, kind)
	if err != nil {
		slog.Warn("Failed to store ext resource", "site", site.Key, "error", err)
		return
	}
	site.SetExtString("./" + rel)
}

// mirrorAPIResource fetches, scans and stores the plugin body behind the
// site's api reference, then rewrites the reference.
func (m *mirrorer) mirrorAPIResource(ctx context.Context, site *document.SiteEntry, kind document.SiteKind, baseURL string, out *mirrorOutcome) {
	target, err := resolveTarget(site.API, baseURL)
	if err != nil {
		out.excluded = true
		out.excludeReason = fmt.Sprintf("cannot resolve plugin reference %q: %v", site.API, err)
		return
	}

	body, err := m.fetch.Fetch(ctx, target)
	if err != nil {
		// The site's own plugin body is a certain dependency: without it the
		// mirrored document cannot be self-contained
		out.excluded = true
		out.excludeReason = fmt.Sprintf("plugin body unreachable: %v", err)
		return
	}

	res, err := depscan.Scan(body, kind)
	if err != nil {
		var decodeErr *depscan.DecodeError
		if errors.As(err, &decodeErr) && m.onDecodeError == config.DecodePolicyKeep {
			slog.Warn("Keeping site with undecodable plugin body",
				"site", site.Key,
				"encoding", decodeErr.Encoding)
			return
		}
		out.excluded = true
		out.excludeReason = fmt.Sprintf("plugin body not decodable: %v", err)
		return
	}

	out.findings = append(out.findings, m.scanner.Scan(site.Key+":"+path.Base(target), res.Body, kind)...)

	_, rel, err := m.store.Put(res.Body, kind)
	if err != nil {
		out.excluded = true
		out.excludeReason = fmt.Sprintf("failed to store plugin body: %v", err)
		return
	}
	site.API = "./" + rel

	m.mirrorDeps(ctx, site, target, res.Refs, 1, out)
}

// mirrorCompiled fetches and stores a compiled module reference, rewriting
// it through set on success. A jar that cannot be localized excludes the
// site: the merged document must never point at a resource the mirror does
// not hold.
func (m *mirrorer) mirrorCompiled(ctx context.Context, site *document.SiteEntry, ref, baseURL string, out *mirrorOutcome, set func(string)) {
	target, err := resolveTarget(ref, baseURL)
	if err != nil {
		out.excluded = true
		out.excludeReason = fmt.Sprintf("cannot resolve jar reference %q: %v", ref, err)
		return
	}

	body, err := m.fetch.Fetch(ctx, target)
	if err != nil {
		out.excluded = true
		out.excludeReason = fmt.Sprintf("jar unreachable: %v", err)
		return
	}

	out.findings = append(out.findings, m.scanner.Scan(site.Key+":"+path.Base(target), body, document.KindCompiled)...)

	_, rel, err := m.store.Put(body, document.KindCompiled)
	if err != nil {
		out.excluded = true
		out.excludeReason = fmt.Sprintf("failed to store jar: %v", err)
		return
	}
	set("./" + rel)
}

// mirrorDeps localizes the plugin body's dependency references, recursively
// up to maxDepDepth. Import targets are certain dependencies and losing one
// leaves the plugin broken, so their failures follow the decode-error
// policy; URL literals are heuristic and their failures are advisory. Proxy
// references are reported but meaningless to mirror.
func (m *mirrorer) mirrorDeps(ctx context.Context, site *document.SiteEntry, pluginURL string, refs []depscan.Ref, depth int, out *mirrorOutcome) {
	if depth > maxDepDepth {
		return
	}

	for _, ref := range refs {
		if ref.Kind == depscan.RefProxy {
			continue
		}

		target, err := depscan.ResolveRef(pluginURL, ref.Target)
		if err != nil {
			slog.Warn("Cannot resolve dependency reference",
				"site", site.Key, "ref", ref.Target, "error", err)
			continue
		}
		if _, done := m.seen[target]; done {
			continue
		}
		m.seen[target] = struct{}{}

		body, err := m.fetch.Fetch(ctx, target)
		if err != nil {
			if ref.Confidence == depscan.Certain && m.onDecodeError == config.DecodePolicyExclude {
				out.excluded = true
				out.excludeReason = fmt.Sprintf("dependency %s unreachable: %v", ref.Target, err)
				return
			}
			slog.Warn("Dependency unreachable", "site", site.Key, "ref", target, "error", err)
			continue
		}

		depKind := kindForRef(target)
		depBody := body
		var depRefs []depscan.Ref
		if depKind == document.KindScript || depKind == document.KindInterpreted {
			res, err := depscan.Scan(body, depKind)
			if err != nil {
				if ref.Confidence == depscan.Certain && m.onDecodeError == config.DecodePolicyExclude {
					out.excluded = true
					out.excludeReason = fmt.Sprintf("dependency %s not decodable: %v", ref.Target, err)
					return
				}
				slog.Warn("Dependency not decodable, skipping", "site", site.Key, "ref", target, "error", err)
				continue
			}
			depBody = res.Body
			depRefs = res.Refs
		}

		out.findings = append(out.findings, m.scanner.Scan(site.Key+":"+path.Base(target), depBody, depKind)...)

		if _, _, err := m.store.Put(depBody, depKind); err != nil {
			slog.Warn("Failed to store dependency", "site", site.Key, "ref", target, "error", err)
			continue
		}

		m.mirrorDeps(ctx, site, target, depRefs, depth+1, out)
		if out.excluded {
			return
		}
	}
}

// resolveTarget strips the checksum suffix and resolves the reference
// against the document's base URL when it is relative
func resolveTarget(ref, baseURL string) (string, error) {
	ref = document.StripChecksumSuffix(ref)
	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref, nil
	}
	if baseURL == "" {
		return "", fmt.Errorf("relative reference with no document base URL")
	}
	return depscan.ResolveRef(baseURL, ref)
}

// kindForRef guesses a dependency's kind from its file extension
func kindForRef(target string) document.SiteKind {
	switch {
	case strings.Contains(target, ".js"):
		return document.KindScript
	case strings.Contains(target, ".py"):
		return document.KindInterpreted
	case strings.Contains(target, ".jar"):
		return document.KindCompiled
	default:
		return document.KindUnknown
	}
}
