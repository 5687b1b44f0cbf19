package pdfkitconf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfigValidates(t *testing.T) {
	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsCacheSizeBelowMinimum(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.CacheSize = 1
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsZeroReadTimeout(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.ObjectReadTimeout = 0
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownParsingMode(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.ParsingMode = "lenient"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsMaxObjectBytesTooSmall(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.MaxObjectBytes = 100
	require.Error(t, cfg.Validate())
}

func TestValidateAcceptsStrictMode(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.ParsingMode = Strict
	cfg.ObjectReadTimeout = 5 * time.Second
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsMaxConcurrentLoadsOutOfRange(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.MaxConcurrentLoads = 0
	require.Error(t, cfg.Validate())

	cfg = NewDefaultConfig()
	cfg.MaxConcurrentLoads = 65
	require.Error(t, cfg.Validate())
}
