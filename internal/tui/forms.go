package tui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/sadopc/planner/internal/model"
)

// formState hosts one huh form inside a view. Field values live behind
// pointers in the view so they survive value copies of the model.
type formState struct {
	active bool
	form   *huh.Form
	kind   string
}

func (f *formState) open(kind string, form *huh.Form) tea.Cmd {
	f.kind = kind
	f.form = form.WithShowHelp(true).WithShowErrors(true)
	f.active = true
	return f.form.Init()
}

func (f *formState) close() {
	f.active = false
	f.form = nil
}

// update forwards msg to the form. It reports true once the form completes;
// esc abandons it.
func (f *formState) update(msg tea.Msg) (bool, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		f.close()
		return false, nil
	}
	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}
	if f.form.State == huh.StateCompleted {
		f.close()
		return true, nil
	}
	if f.form.State == huh.StateAborted {
		f.close()
		return false, nil
	}
	return false, cmd
}

func (f formState) view() string {
	if f.form == nil {
		return ""
	}
	return f.form.View()
}

// --- Validators ---

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func validClock(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return errors.New("use HH:MM")
	}
	return nil
}

func validDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := model.ParseDate(s); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validMinutes(s string) error {
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err != nil || n < 0 {
		return errors.New("whole minutes")
	}
	return nil
}

// optionalMinutes parses an optional minute count; blank gives nil.
func optionalMinutes(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func options[T ~string](values []T) []huh.Option[T] {
	out := make([]huh.Option[T], len(values))
	for i, v := range values {
		out[i] = huh.NewOption(string(v), v)
	}
	return out
}
