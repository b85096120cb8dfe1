package document

import "strings"

// SiteKind is the plugin-loading mechanism a site entry resolves to.
type SiteKind string

const (
	// KindAPI is a direct collection API endpoint, no plugin involved
	KindAPI SiteKind = "api"

	// KindScript is a script module plugin (.js)
	KindScript SiteKind = "js"

	// KindInterpreted is an interpreted module plugin (.py)
	KindInterpreted SiteKind = "py"

	// KindCompiled is a compiled module plugin (jar, csp_ entry points)
	KindCompiled SiteKind = "jar"

	// KindUnknown means the entry declares no recognizable mechanism
	KindUnknown SiteKind = "unknown"
)

// Classify determines which loading mechanism a site entry uses. Type 1
// entries are always direct APIs; everything else is inferred from the api
// and jar references.
func Classify(site *SiteEntry) SiteKind {
	if site.Type == SiteTypeCMS {
		return KindAPI
	}

	api := site.API
	switch {
	case strings.Contains(api, ".js"):
		return KindScript
	case strings.Contains(api, ".py"):
		return KindInterpreted
	case strings.Contains(api, ".jar"), site.Jar != "":
		return KindCompiled
	case strings.HasPrefix(api, "csp_"):
		// csp_ entry points resolve against a compiled module, either their
		// own jar or the document's global spider jar.
		return KindCompiled
	case strings.HasPrefix(api, "http"):
		return KindAPI
	}

	return KindUnknown
}