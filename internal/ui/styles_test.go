package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Mohsinsiddi/w3raffle/internal/txstatus"
)

func TestFormattersContainMessage(t *testing.T) {
	formatters := map[string]func(string) string{
		"Success":   Success,
		"Warn":      Warn,
		"Err":       Err,
		"Info":      Info,
		"Addr":      Addr,
		"Val":       Val,
		"Meta":      Meta,
		"ChainName": ChainName,
	}
	for name, fn := range formatters {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, fn("test"), "test")
		})
	}
}

func TestFormatterPrefixes(t *testing.T) {
	assert.Contains(t, Success("done"), "✓")
	assert.Contains(t, Warn("careful"), "⚠")
	assert.Contains(t, Err("failed"), "✗")
	assert.Contains(t, Info("note"), "ℹ")
	assert.NotEqual(t, Info("message"), Warn("message"))
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "", TruncateAddr(""))
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
	assert.Equal(t, "0x12345678", TruncateAddr("0x12345678"))
	assert.Equal(t, "0x1234…5678", TruncateAddr("0x1234567890abcdef1234567890abcdef12345678"))
}

func TestPhaseLabel(t *testing.T) {
	for _, p := range []txstatus.Phase{
		txstatus.PhaseIdle, txstatus.PhasePreparing, txstatus.PhaseSubmitted,
		txstatus.PhaseIncluded, txstatus.PhaseFinalized, txstatus.PhaseFailed,
	} {
		assert.Contains(t, Phase(p), p.String())
	}
}
