package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/journal"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNewDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record written at default level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn record missing")
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Debug("band selected", "band", "linear", "duty", 54.29)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "band selected" || rec["band"] != "linear" || rec["level"] != "DEBUG" {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestNewJournalHandlerOnlyWhenEnabled(t *testing.T) {
	logger, err := New(Config{}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := logger.Handler().(*slog.TextHandler); !ok {
		t.Errorf("without journal: got %T, want *slog.TextHandler", logger.Handler())
	}

	logger, err = New(Config{Journal: true}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f, ok := logger.Handler().(fanout)
	if !ok || len(f) != 2 {
		t.Fatalf("with journal: got %T %v", logger.Handler(), logger.Handler())
	}
	if _, ok := f[1].(*JournalHandler); !ok {
		t.Errorf("second handler: got %T, want *JournalHandler", f[1])
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for bad level")
	}
	if _, err := New(Config{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for bad format")
	}
}

type sent struct {
	msg      string
	priority journal.Priority
	fields   map[string]string
}

func newCapturingJournal(level slog.Level) (*JournalHandler, *[]sent) {
	var got []sent
	h := NewJournalHandler(level)
	h.send = func(msg string, p journal.Priority, vars map[string]string) error {
		got = append(got, sent{msg, p, vars})
		return nil
	}
	return h, &got
}

func TestJournalHandlerFields(t *testing.T) {
	h, got := newCapturingJournal(slog.LevelDebug)
	logger := slog.New(h).With("component", "gpio").WithGroup("fan")

	logger.Info("set duty", "duty", 46.5, "at", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	if len(*got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(*got))
	}
	rec := (*got)[0]
	if rec.msg != "set duty" || rec.priority != journal.PriInfo {
		t.Errorf("record: %q priority %d", rec.msg, rec.priority)
	}
	want := map[string]string{
		"SYSLOG_IDENTIFIER": Identifier,
		"COMPONENT":         "gpio",
		"FAN_DUTY":          "46.5",
		"FAN_AT":            "2026-01-01T00:00:00Z",
	}
	for k, v := range want {
		if rec.fields[k] != v {
			t.Errorf("field %s = %q, want %q", k, rec.fields[k], v)
		}
	}
}

func TestJournalHandlerPriorities(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  journal.Priority
	}{
		{slog.LevelDebug, journal.PriDebug},
		{slog.LevelInfo, journal.PriInfo},
		{slog.LevelWarn, journal.PriWarning},
		{slog.LevelError, journal.PriErr},
	}
	for _, tt := range tests {
		if got := priority(tt.level); got != tt.want {
			t.Errorf("priority(%v) = %d, want %d", tt.level, got, tt.want)
		}
	}
}

func TestJournalHandlerLevel(t *testing.T) {
	h, got := newCapturingJournal(slog.LevelWarn)
	logger := slog.New(h)

	logger.Info("dropped")
	logger.Error("kept")

	if len(*got) != 1 || (*got)[0].msg != "kept" {
		t.Errorf("unexpected records: %+v", *got)
	}
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("down") }

func TestFanoutSendsToEnabledHandlers(t *testing.T) {
	var a, b bytes.Buffer
	ha := slog.NewTextHandler(&a, &slog.HandlerOptions{Level: slog.LevelDebug})
	hb := slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger := slog.New(Fanout(ha, hb)).With("component", "control")

	logger.Debug("tick")
	logger.Warn("hot")

	if !strings.Contains(a.String(), "tick") || !strings.Contains(a.String(), "hot") {
		t.Errorf("handler a output: %q", a.String())
	}
	if strings.Contains(b.String(), "tick") || !strings.Contains(b.String(), "component=control") {
		t.Errorf("handler b output: %q", b.String())
	}
}

func TestFanoutGroups(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(Fanout(slog.NewTextHandler(&a, nil), slog.NewTextHandler(&b, nil)))

	logger.WithGroup("fan").Info("set", "duty", 40)

	for _, out := range []string{a.String(), b.String()} {
		if !strings.Contains(out, "fan.duty=40") {
			t.Errorf("missing grouped attr: %q", out)
		}
	}
}

func TestFanoutContinuesAfterError(t *testing.T) {
	var buf bytes.Buffer
	good := slog.NewTextHandler(&buf, nil)
	bad := failingHandler{slog.NewTextHandler(&bytes.Buffer{}, nil)}
	h := Fanout(bad, good)

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
	if err := h.Handle(context.Background(), r); err == nil {
		t.Error("expected joined error")
	}
	if !strings.Contains(buf.String(), "hello") {
		t.Error("second handler did not receive record")
	}
}

func TestFanoutSkipsNil(t *testing.T) {
	text := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h := Fanout(text, nil); h != text {
		t.Errorf("single handler should be returned unwrapped, got %T", h)
	}

	h := Fanout(nil, nil)
	if h.Enabled(context.Background(), slog.LevelError) {
		t.Error("empty fanout should be disabled")
	}
	if err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "x", 0)); err != nil {
		t.Errorf("empty fanout Handle: %v", err)
	}
}

func TestFanoutEnabled(t *testing.T) {
	warn := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	debug := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelDebug})
	h := Fanout(warn, nil, nil)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled")
	}
	if !Fanout(warn, debug).Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be enabled through the debug handler")
	}
}
