package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanforge/chanforge/internal/document"
)

func TestScanScript(t *testing.T) {
	t.Parallel()

	body := []byte(`
var a = eval("1+1");
var b = atob("aGVsbG8=");
var clean = JSON.parse(x);
`)

	findings := New().Scan("site1:plugin.js", body, document.KindScript)
	require.Len(t, findings, 2)

	// Ordered by offset
	assert.Equal(t, SeverityHigh, findings[0].Severity)
	assert.Equal(t, "eval(", findings[0].Pattern)
	assert.Equal(t, SeverityLow, findings[1].Severity)
	assert.Equal(t, "site1:plugin.js", findings[0].Resource)
	assert.Less(t, findings[0].Offset, findings[1].Offset)
}

func TestScanReportsEveryOccurrence(t *testing.T) {
	t.Parallel()

	body := []byte(`eval(a); eval(b); eval(c);`)
	findings := New().Scan("r", body, document.KindScript)
	assert.Len(t, findings, 3)
}

func TestScanInterpreted(t *testing.T) {
	t.Parallel()

	body := []byte(`
import socket
import base64
data = base64.b64decode(payload)
os.system("ls")
`)

	findings := New().Scan("site2:plugin.py", body, document.KindInterpreted)

	severities := CountBySeverity(findings)
	assert.Equal(t, 1, severities[SeverityHigh])
	assert.Equal(t, 1, severities[SeverityMedium])
	assert.Equal(t, 1, severities[SeverityLow])
	assert.True(t, HasHighSeverity(findings))
}

func TestScanCompiled(t *testing.T) {
	t.Parallel()

	t.Run("runtime_exec", func(t *testing.T) {
		t.Parallel()
		body := []byte("\x00java/lang/Object\x00java/lang/Runtime\x00")
		findings := New().Scan("spider.jar", body, document.KindCompiled)
		require.Len(t, findings, 1)
		assert.Equal(t, SeverityHigh, findings[0].Severity)
	})

	t.Run("packed_jar_flagged", func(t *testing.T) {
		t.Parallel()
		body := []byte("opaque encrypted blob with no class signatures")
		findings := New().Scan("packed.jar", body, document.KindCompiled)
		require.Len(t, findings, 1)
		assert.Equal(t, SeverityMedium, findings[0].Severity)
		assert.Contains(t, findings[0].Message, "packed")
	})

	t.Run("ordinary_jar_clean", func(t *testing.T) {
		t.Parallel()
		body := []byte("\x00java/lang/Object\x00java/lang/String\x00")
		findings := New().Scan("clean.jar", body, document.KindCompiled)
		assert.Empty(t, findings)
	})
}

func TestScanUnknownKind(t *testing.T) {
	t.Parallel()

	findings := New().Scan("r", []byte("eval(x)"), document.KindUnknown)
	assert.Empty(t, findings)
}

func TestHasHighSeverity(t *testing.T) {
	t.Parallel()

	assert.False(t, HasHighSeverity(nil))
	assert.False(t, HasHighSeverity([]Finding{{Severity: SeverityLow}}))
	assert.True(t, HasHighSeverity([]Finding{{Severity: SeverityLow}, {Severity: SeverityHigh}}))
}

func TestFindingString(t *testing.T) {
	t.Parallel()

	f := Finding{Resource: "a.js", Severity: SeverityHigh, Offset: 12, Message: "dynamic code evaluation"}
	assert.Equal(t, "[high] a.js@12: dynamic code evaluation", f.String())
}
