package logger

import (
	"fmt"
	"testing"
)

type recorder struct {
	lines []string
}

func (r *recorder) record(level, message string, keyvals []any) {
	r.lines = append(r.lines, fmt.Sprintf("%s %s %v", level, message, keyvals))
}

func (r *recorder) Debug(message string, keyvals ...any) { r.record("debug", message, keyvals) }
func (r *recorder) Info(message string, keyvals ...any)  { r.record("info", message, keyvals) }
func (r *recorder) Warn(message string, keyvals ...any)  { r.record("warn", message, keyvals) }
func (r *recorder) Error(message string, keyvals ...any) { r.record("error", message, keyvals) }

func TestDispatch(t *testing.T) {
	current = nil
	Info("dropped before init")

	a, b := &recorder{}, &recorder{}
	Init(a, b)
	t.Cleanup(func() { current = nil })

	Debug("scoring", "entity", "peter")
	Info("loaded")
	Warn("skipped", "path", "x.md")
	Error("failed")

	want := []string{
		"debug scoring [entity peter]",
		"info loaded []",
		"warn skipped [path x.md]",
		"error failed []",
	}
	for _, r := range []*recorder{a, b} {
		if len(r.lines) != len(want) {
			t.Fatalf("expected %d lines, got %v", len(want), r.lines)
		}
		for i := range want {
			if r.lines[i] != want[i] {
				t.Fatalf("line %d: expected %q, got %q", i, want[i], r.lines[i])
			}
		}
	}
}
