package logging

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerDefaultsToDiscard(t *testing.T) {
	logger.Store(nil)
	l := Logger()
	require.NotNil(t, l)
	// A discard logger must not panic and must not be observable via
	// BufferedLogHandler, since nothing was ever wired to it.
	l.Info("should be discarded")
}

func TestSetLoggerNilResetsToDiscard(t *testing.T) {
	handler := NewBufferedLogHandler(nil)
	SetLogger(slog.New(handler))
	Logger().Info("visible")
	require.True(t, handler.Contains("visible"))

	SetLogger(nil)
	Logger().Info("invisible")
	require.False(t, handler.Contains("invisible"))
}

func TestBufferedLogHandlerCapturesAttrs(t *testing.T) {
	handler := NewBufferedLogHandler(nil)
	SetLogger(slog.New(handler))
	t.Cleanup(func() { SetLogger(nil) })

	Logger().Error("failed to resolve trailer Root", "obj", uint32(7), "error", "boom")

	require.True(t, handler.Contains("failed to resolve trailer Root"))
	require.True(t, handler.Contains("obj=7"))
	require.Greater(t, handler.Len(), 0)
}

func TestBufferedLogHandlerReset(t *testing.T) {
	handler := NewBufferedLogHandler(nil)
	SetLogger(slog.New(handler))
	t.Cleanup(func() { SetLogger(nil) })

	Logger().Warn("something")
	require.Greater(t, handler.Len(), 0)

	handler.Reset()
	require.Equal(t, 0, handler.Len())
	require.Empty(t, handler.String())
}

func TestBufferedLogHandlerWithAttrsPrefixesGroup(t *testing.T) {
	handler := NewBufferedLogHandler(nil)
	grouped := handler.WithGroup("xref").WithAttrs([]slog.Attr{slog.Int("offset", 42)})
	SetLogger(slog.New(grouped))
	t.Cleanup(func() { SetLogger(nil) })

	Logger().Info("bypass scan")
	require.True(t, handler.Contains("xref.offset=42"))
}

func TestBufferedLogHandlerRespectsLevel(t *testing.T) {
	handler := NewBufferedLogHandler(&slog.HandlerOptions{Level: slog.LevelWarn})
	SetLogger(slog.New(handler))
	t.Cleanup(func() { SetLogger(nil) })

	Logger().Debug("too quiet to log")
	Logger().Warn("loud enough")

	require.False(t, handler.Contains("too quiet"))
	require.True(t, handler.Contains("loud enough"))
}
