// Package security pattern-matches mirrored plugin code against a fixed
// rule set. Findings are advisory; the orchestrator decides whether a
// high-severity finding fails the build.
package security

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/chanforge/chanforge/internal/document"
)

// Severity levels for findings
type Severity string

const (
	// SeverityHigh findings indicate dynamic code loading or execution
	SeverityHigh Severity = "high"

	// SeverityMedium findings indicate capabilities worth reviewing
	SeverityMedium Severity = "medium"

	// SeverityLow findings are obfuscation or hygiene markers
	SeverityLow Severity = "low"
)

// Finding is one matched rule in one resource
type Finding struct {
	Resource string   `json:"resource"`
	Severity Severity `json:"severity"`
	Pattern  string   `json:"pattern"`
	Offset   int      `json:"offset"`
	Message  string   `json:"message"`
}

type rule struct {
	pattern  []byte
	severity Severity
	message  string
}

// Rule sets are plain byte signatures: class and function names survive
// minification and compilation well enough for a first-pass triage, and the
// scanner never executes anything.
var (
	scriptRules = []rule{
		{[]byte("eval("), SeverityHigh, "dynamic code evaluation"},
		{[]byte("new Function("), SeverityHigh, "dynamic code evaluation"},
		{[]byte("importScripts("), SeverityMedium, "dynamic script loading"},
		{[]byte("atob("), SeverityLow, "base64 decoding, possible obfuscation"},
		{[]byte("fromCharCode"), SeverityLow, "character-code string building, possible obfuscation"},
		{[]byte("WebSocket("), SeverityMedium, "raw websocket usage"},
	}

	interpretedRules = []rule{
		{[]byte("eval("), SeverityHigh, "dynamic code evaluation"},
		{[]byte("exec("), SeverityHigh, "dynamic code execution"},
		{[]byte("os.system"), SeverityHigh, "shell command execution"},
		{[]byte("subprocess"), SeverityHigh, "subprocess usage"},
		{[]byte("import socket"), SeverityMedium, "raw socket usage, potential exfiltration"},
		{[]byte("__import__"), SeverityMedium, "dynamic module import"},
		{[]byte("base64.b64decode"), SeverityLow, "base64 decoding, possible obfuscation"},
	}

	compiledRules = []rule{
		{[]byte("java/lang/Runtime"), SeverityHigh, "possible command execution (Runtime)"},
		{[]byte("ProcessBuilder"), SeverityHigh, "possible command execution (ProcessBuilder)"},
		{[]byte("dalvik/system/DexClassLoader"), SeverityHigh, "dynamic code loading (DexClassLoader)"},
		{[]byte("dalvik/system/PathClassLoader"), SeverityMedium, "dynamic code loading (PathClassLoader)"},
		{[]byte("java/net/Socket"), SeverityMedium, "raw socket usage"},
		{[]byte("getExternalStorageDirectory"), SeverityMedium, "external storage access"},
	}
)

// Scanner matches mirrored resources against the rule set
type Scanner struct{}

// New creates a security scanner
func New() *Scanner {
	return &Scanner{}
}

// Scan returns all rule matches in a resource body, ordered by offset.
// Every occurrence of a pattern is reported, not just the first.
func (*Scanner) Scan(resource string, body []byte, kind document.SiteKind) []Finding {
	var findings []Finding

	for _, r := range rulesFor(kind) {
		offset := 0
		for {
			idx := bytes.Index(body[offset:], r.pattern)
			if idx < 0 {
				break
			}
			findings = append(findings, Finding{
				Resource: resource,
				Severity: r.severity,
				Pattern:  string(r.pattern),
				Offset:   offset + idx,
				Message:  r.message,
			})
			offset += idx + len(r.pattern)
		}
	}

	if kind == document.KindCompiled && looksPacked(body) {
		findings = append(findings, Finding{
			Resource: resource,
			Severity: SeverityMedium,
			Pattern:  "",
			Offset:   0,
			Message:  "compiled module appears packed or encrypted, internals not analyzable",
		})
	}

	sort.Slice(findings, func(i, j int) bool { return findings[i].Offset < findings[j].Offset })
	return findings
}

// looksPacked flags compiled modules missing the signatures every ordinary
// jar or dex file carries.
func looksPacked(body []byte) bool {
	return !bytes.Contains(body, []byte("java/lang/Object")) &&
		!bytes.Contains(body, []byte("classes.dex"))
}

func rulesFor(kind document.SiteKind) []rule {
	switch kind {
	case document.KindScript:
		return scriptRules
	case document.KindInterpreted:
		return interpretedRules
	case document.KindCompiled:
		return compiledRules
	default:
		return nil
	}
}

// CountBySeverity tallies findings per severity level
func CountBySeverity(findings []Finding) map[Severity]int {
	counts := make(map[Severity]int)
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}

// HasHighSeverity reports whether any finding is high severity
func HasHighSeverity(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityHigh {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer for log output
func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s@%d: %s", f.Severity, f.Resource, f.Offset, f.Message)
}
