package playwright

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/dealer-capture/internal/core/domain"
)

type fakePage struct {
	url    string
	closed bool
}

func (p fakePage) URL() string    { return p.url }
func (p fakePage) IsClosed() bool { return p.closed }

func TestFindPage(t *testing.T) {
	pages := []fakePage{
		{url: "https://portal/login"},
		{url: "https://portal/form", closed: true},
		{url: "https://portal/popup"},
	}

	tests := []struct {
		name    string
		pages   []fakePage
		url     string
		want    string
		wantHit bool
	}{
		{"exact match", pages, "https://portal/login", "https://portal/login", true},
		{"closed page skipped, falls back to last open", pages, "https://portal/form", "https://portal/popup", true},
		{"unknown url falls back", pages, "https://elsewhere", "https://portal/popup", true},
		{"no pages", nil, "https://portal/login", "", false},
		{"all closed", []fakePage{{url: "a", closed: true}}, "a", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := findPage(tt.pages, tt.url)
			assert.Equal(t, tt.wantHit, ok)
			assert.Equal(t, tt.want, got.url)
		})
	}
}

func TestEncodeBindingArgs(t *testing.T) {
	t.Run("object argument", func(t *testing.T) {
		payload, err := encodeBindingArgs([]any{map[string]any{
			"type":     "observation",
			"selector": "input#txt_chassis_no",
			"value":    "ABC123",
		}})
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"observation","selector":"input#txt_chassis_no","value":"ABC123"}`, string(payload))
	})

	t.Run("json string argument", func(t *testing.T) {
		payload, err := encodeBindingArgs([]any{`{"type":"form_submission"}`})
		require.NoError(t, err)
		assert.Equal(t, `{"type":"form_submission"}`, string(payload))
	})

	t.Run("plain string rejected", func(t *testing.T) {
		_, err := encodeBindingArgs([]any{"hello"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("no arguments", func(t *testing.T) {
		_, err := encodeBindingArgs(nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("nil argument", func(t *testing.T) {
		_, err := encodeBindingArgs([]any{nil})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestNewDriver_Defaults(t *testing.T) {
	t.Setenv(ExecutablePathEnv, "/usr/bin/chromium")

	d := NewDriver(Options{})

	assert.Equal(t, "/usr/bin/chromium", d.opts.ExecutablePath)
	assert.Equal(t, 60*time.Second, d.opts.NavigationTimeout)
	assert.Equal(t, 10*time.Second, d.opts.ShutdownTimeout)
}

func TestNewDriver_ExplicitPathWins(t *testing.T) {
	t.Setenv(ExecutablePathEnv, "/usr/bin/chromium")

	d := NewDriver(Options{ExecutablePath: "/opt/chrome", NavigationTimeout: time.Second})

	assert.Equal(t, "/opt/chrome", d.opts.ExecutablePath)
	assert.Equal(t, time.Second, d.opts.NavigationTimeout)
}
