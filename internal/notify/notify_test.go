package notify

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type recorder struct {
	titles []string
	err    error
}

func (r *recorder) Notify(title, message string) error {
	r.titles = append(r.titles, title)
	return r.err
}

func TestNewDisabled(t *testing.T) {
	if _, ok := New(false, true).(Nop); !ok {
		t.Fatal("disabled notifications should use Nop")
	}
	if _, ok := New(true, false).(Desktop); !ok {
		t.Fatal("enabled notifications should use Desktop")
	}
}

func TestSend(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	r := &recorder{}
	Send(r, log, "Focus Session Complete!", "done")
	if len(r.titles) != 1 || buf.Len() != 0 {
		t.Fatalf("unexpected send: %v %q", r.titles, buf.String())
	}

	r.err = errors.New("no dbus")
	Send(r, log, "again", "")
	if !strings.Contains(buf.String(), "notification failed") {
		t.Fatalf("failure should be logged, got %q", buf.String())
	}

	Send(nil, log, "x", "y")
}
