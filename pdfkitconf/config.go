// Package pdfkitconf holds tunable parameters for document parsing and
// validates them before use, following the teacher's Config/Validate
// pattern.
package pdfkitconf

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// ParsingMode names how tolerant the parser is of malformed input.
// Config.Validate checks the value; the parsing code does not read it,
// and xref.Build applies its recovery fallbacks whatever the mode.
type ParsingMode string

const (
	// Strict names failing on the first unrecoverable structural error.
	Strict ParsingMode = "strict"
	// BestEffort names falling back to recovery heuristics (bypassXref,
	// tolerant trailer merges) rather than failing the whole document.
	BestEffort ParsingMode = "best-effort"
)

// Config bundles the limits a Document/Registry is built with.
// OpenWithConfig validates every field; of them, only CacheSize is
// applied to the Registry.
type Config struct {
	// CacheSize caps the number of objects Registry keeps resident
	// before evicting the least recently used one.
	CacheSize int `validate:"min=16,max=1000000"`
	// MaxConcurrentLoads is a concurrency bound for prefetching. It is
	// only validated: Registry.Prefetch takes its bound as an argument.
	MaxConcurrentLoads int `validate:"min=1,max=64"`
	// ObjectReadTimeout is a time limit for a single lazy object load.
	// It is only validated: object loads are not timed.
	ObjectReadTimeout time.Duration `validate:"required"`
	// ParsingMode is validated but not read by the parsing code.
	ParsingMode ParsingMode `validate:"oneof=strict best-effort"`
	// MaxObjectBytes is a per-object read ceiling (1 MiB by default). It
	// is only validated: Registry reads each object from its offset to
	// the end of the data, with no cap on the bytes read.
	MaxObjectBytes int `validate:"min=4096"`
}

// NewDefaultConfig returns the parameter set pdfkit uses when the
// caller doesn't supply one.
func NewDefaultConfig() *Config {
	return &Config{
		CacheSize:          2048,
		MaxConcurrentLoads: 8,
		ObjectReadTimeout:  10 * time.Second,
		ParsingMode:        BestEffort,
		MaxObjectBytes:     1 << 20,
	}
}

// Validate checks cfg's fields against their declared constraints.
func (cfg *Config) Validate() error {
	return validator.New().Struct(cfg)
}
