// Package notify sends best-effort desktop notifications.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// Notifier delivers a short message to the user.
type Notifier interface {
	Notify(title, message string) error
}

// Desktop posts OS notifications through the platform's notification service.
type Desktop struct {
	// Sound also rings the terminal bell.
	Sound bool
}

func (d Desktop) Notify(title, message string) error {
	if d.Sound {
		_ = beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
	}
	return beeep.Notify(title, message, "")
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(string, string) error { return nil }

// New returns a Desktop notifier, or Nop when notifications are disabled.
func New(enabled, sound bool) Notifier {
	if !enabled {
		return Nop{}
	}
	beeep.AppName = "planner"
	return Desktop{Sound: sound}
}

// Send notifies and logs a failure instead of returning it. Delivery is
// best effort.
func Send(n Notifier, log *slog.Logger, title, message string) {
	if n == nil {
		return
	}
	if err := n.Notify(title, message); err != nil && log != nil {
		log.Warn("notification failed", "title", title, "err", err)
	}
}
