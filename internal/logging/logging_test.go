package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func setup(t *testing.T, opts Options) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	opts.Writer = &buf
	Setup(opts)
	return &buf
}

func TestDebugNamespaces(t *testing.T) {
	buf := setup(t, Options{Level: "info", Debug: "browser"})

	For("browser").Debug("switched window")
	For("wallet").Debug("hidden step")
	For("wallet").Info("flow done")

	out := buf.String()
	if !strings.Contains(out, "switched window") {
		t.Errorf("browser debug line missing: %s", out)
	}
	if strings.Contains(out, "hidden step") {
		t.Errorf("wallet debug line should be filtered: %s", out)
	}
	if !strings.Contains(out, "flow done") {
		t.Errorf("info line missing: %s", out)
	}
}

func TestDebugAll(t *testing.T) {
	buf := setup(t, Options{Debug: "*"})
	For("anything").Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("wildcard did not enable debug")
	}
}

func TestDisable(t *testing.T) {
	buf := setup(t, Options{})
	Disable()
	defer Enable()

	Infof("quiet %d", 1)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %s", buf.String())
	}

	Enable()
	Warnf("loud %d", 2)
	if !strings.Contains(buf.String(), "loud 2") {
		t.Errorf("expected output after Enable, got %s", buf.String())
	}
}

func TestJSONOutput(t *testing.T) {
	buf := setup(t, Options{JSON: true, Level: "warn"})
	slog.Info("dropped")
	Errorf("boom")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Error("info should be below warn")
	}
	if !strings.Contains(out, `"msg":"boom"`) {
		t.Errorf("expected JSON record, got %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo, "bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
