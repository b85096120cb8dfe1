package depscan

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/chanforge/chanforge/internal/document"
)

// Declaration idioms and URL shapes scanned for. Concatenation-built URLs
// surface through the bare absolute-URL pattern as long as either fragment
// is itself a URL literal.
var (
	importPattern  = regexp.MustCompile(`(?:import|from)\s+['"]([^'"]+)['"]`)
	requirePattern = regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`)
	absURLPattern  = regexp.MustCompile(`https?://[^\s'"<>\\]+`)
	protoRelative  = regexp.MustCompile(`['"](//[a-zA-Z0-9][a-zA-Z0-9-]*\.[^\s'"<>]+)['"]`)

	// Companion local-proxy convention: loopback plus the fixed service port.
	// Other loopback URLs are ordinary URL refs.
	proxyPattern = regexp.MustCompile(`https?://(?:127\.0\.0\.1|localhost):9978(?:[^\s'"<>]*)?`)
)

// Result holds everything the scanner learned about one plugin body
type Result struct {
	// Body is the decoded plugin body; identical to the input when the body
	// was not packed. This is the form the content store keeps.
	Body []byte

	// Encoding is the packed encoding that was removed, or "plain"
	Encoding string

	// Refs are the extracted candidate references, sorted by target
	Refs []Ref
}

// Scan decodes body if packed and extracts candidate dependency references.
// Compiled modules are opaque to textual scanning and yield no refs.
func Scan(body []byte, kind document.SiteKind) (*Result, error) {
	decoded, encoding, err := Decode(body)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Body:     decoded,
		Encoding: encoding,
	}

	if kind == document.KindCompiled {
		return res, nil
	}

	res.Refs = extractRefs(string(decoded))
	return res, nil
}

// extractRefs runs every known declaration idiom over the body text
func extractRefs(text string) []Ref {
	seen := make(map[string]Ref)

	record := func(target string, kind RefKind, conf Confidence) {
		target = strings.TrimRight(target, `",;)}]`)
		if target == "" || strings.HasPrefix(target, "data:") || strings.HasPrefix(target, "js:") {
			return
		}
		// Certain beats Heuristic when the same target shows up twice
		if prev, ok := seen[target]; ok && prev.Confidence == Certain {
			return
		}
		seen[target] = Ref{Target: target, Kind: kind, Confidence: conf}
	}

	for _, m := range importPattern.FindAllStringSubmatch(text, -1) {
		record(m[1], RefImport, Certain)
	}
	for _, m := range requirePattern.FindAllStringSubmatch(text, -1) {
		record(m[1], RefImport, Certain)
	}

	for _, m := range absURLPattern.FindAllString(text, -1) {
		if proxyPattern.MatchString(m) {
			record(m, RefProxy, Certain)
			continue
		}
		record(m, RefURL, Heuristic)
	}
	for _, m := range protoRelative.FindAllStringSubmatch(text, -1) {
		record(m[1], RefURL, Heuristic)
	}

	refs := make([]Ref, 0, len(seen))
	for _, ref := range seen {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Target < refs[j].Target })
	return refs
}

// ResolveRef resolves a (possibly relative) reference target against the URL
// of the plugin body it was found in.
func ResolveRef(pluginURL, target string) (string, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return target, nil
	}
	if strings.HasPrefix(target, "//") {
		return "http:" + target, nil
	}

	base, err := url.Parse(pluginURL)
	if err != nil {
		return "", err
	}
	rel, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}

// Domains extracts the distinct non-loopback hosts referenced by URL refs,
// sorted. Used for reporting which remote hosts a plugin talks to.
func Domains(refs []Ref) []string {
	set := make(map[string]struct{})
	for _, ref := range refs {
		if ref.Kind != RefURL {
			continue
		}
		target := ref.Target
		if strings.HasPrefix(target, "//") {
			target = "http:" + target
		}
		parsed, err := url.Parse(target)
		if err != nil || parsed.Host == "" {
			continue
		}
		host := parsed.Host
		if strings.Contains(host, "127.0.0.1") || strings.Contains(host, "localhost") {
			continue
		}
		set[host] = struct{}{}
	}

	domains := make([]string, 0, len(set))
	for d := range set {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}
