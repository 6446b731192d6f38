package quote

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeQuote(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.json")
	writeQuote(t, path, `{
		"name": "Acme HQ refresh",
		"components": {
			"capital": {"enabled": true, "params": {"termMonths": 36}},
			"prtg": {"enabled": false}
		}
	}`)

	p, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "Acme HQ refresh", p.Name())
	assert.True(t, p.IsEnabled("capital"))
	assert.False(t, p.IsEnabled("prtg"))
	assert.False(t, p.IsEnabled("support"), "absent components are disabled")
	assert.Equal(t, 36, p.ComponentParams("capital").Int("termMonths", 0))
	assert.Empty(t, p.ComponentParams("support"), "absent components get empty params")
}

func TestLoadFileRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.json")
	writeQuote(t, path, `{"components": `)
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestReloadReportsChangedComponents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.json")
	writeQuote(t, path, `{"components": {
		"capital": {"enabled": true, "params": {"termMonths": 36}},
		"prtg": {"enabled": true, "params": {"sensors": 200}},
		"support": {"enabled": true}
	}}`)

	p, err := LoadFile(path)
	require.NoError(t, err)

	// prtg params edited, support removed, onboarding added.
	writeQuote(t, path, `{"components": {
		"capital": {"enabled": true, "params": {"termMonths": 36}},
		"prtg": {"enabled": true, "params": {"sensors": 900}},
		"onboarding": {"enabled": true}
	}}`)

	changed, err := p.Reload()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"prtg", "support", "onboarding"}, changed)
	assert.False(t, p.IsEnabled("support"))
	assert.Equal(t, 900, p.ComponentParams("prtg").Int("sensors", 0))
}

func TestReloadFailureKeepsPreviousQuote(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quote.json")
	writeQuote(t, path, `{"components": {"capital": {"enabled": true}}}`)

	p, err := LoadFile(path)
	require.NoError(t, err)

	writeQuote(t, path, `not json`)
	_, err = p.Reload()
	require.Error(t, err)
	assert.True(t, p.IsEnabled("capital"))
}
