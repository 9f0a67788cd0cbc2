// Package prefs keeps small local key-value state on disk: UI cursor state,
// the signed-in session and local settings.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/peterbourgon/diskv/v3"
	"github.com/sadopc/planner/internal/auth"
	"github.com/sadopc/planner/internal/model"
)

const (
	KeyUI       = "planner-storage"
	KeySession  = "session"
	KeySettings = "settings"
)

// Settings edited from the settings view. Durations are minutes.
type Settings struct {
	DefaultView          model.View `json:"defaultView"`
	StartOfWeek          string     `json:"startOfWeek"` // sunday, monday
	TimeFormat           string     `json:"timeFormat"`  // 12h, 24h
	PomodoroWork         int        `json:"pomodoroWork"`
	PomodoroBreak        int        `json:"pomodoroBreak"`
	DeepWorkDuration     int        `json:"deepWorkDuration"`
	NotificationsEnabled bool       `json:"notificationsEnabled"`
	SoundEnabled         bool       `json:"soundEnabled"`
}

func DefaultSettings() Settings {
	return Settings{
		DefaultView:          model.ViewDay,
		StartOfWeek:          "sunday",
		TimeFormat:           "24h",
		PomodoroWork:         25,
		PomodoroBreak:        5,
		DeepWorkDuration:     90,
		NotificationsEnabled: true,
		SoundEnabled:         true,
	}
}

type Store struct {
	d        *diskv.Diskv
	defaults Settings
}

// New opens a store rooted at dir, creating it when needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create prefs dir: %w", err)
	}
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:     dir,
			Transform:    func(string) []string { return []string{} },
			CacheSizeMax: 64 * 1024,
			FilePerm:     0o600,
			PathPerm:     0o700,
		}),
		defaults: DefaultSettings(),
	}, nil
}

// SetDefaults replaces the values LoadSettings starts from, e.g. with the
// focus lengths from the config file.
func (s *Store) SetDefaults(settings Settings) {
	s.defaults = settings
}

// get decodes key into v. It reports false when the key is absent.
func (s *Store) get(key string, v any) (bool, error) {
	if !s.d.Has(key) {
		return false, nil
	}
	b, err := s.d.Read(key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) put(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.d.Write(key, b); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *Store) LoadUI() (*model.UIState, error) {
	var ui model.UIState
	ok, err := s.get(KeyUI, &ui)
	if err != nil || !ok {
		return nil, err
	}
	return &ui, nil
}

func (s *Store) SaveUI(ui model.UIState) error {
	return s.put(KeyUI, ui)
}

func (s *Store) LoadSession() (*auth.Session, error) {
	var sess auth.Session
	ok, err := s.get(KeySession, &sess)
	if err != nil || !ok {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) SaveSession(sess *auth.Session) error {
	return s.put(KeySession, sess)
}

func (s *Store) ClearSession() error {
	if !s.d.Has(KeySession) {
		return nil
	}
	return s.d.Erase(KeySession)
}

// LoadSettings returns the saved settings merged over the defaults.
func (s *Store) LoadSettings() (Settings, error) {
	settings := s.defaults
	if _, err := s.get(KeySettings, &settings); err != nil {
		return s.defaults, err
	}
	return settings, nil
}

func (s *Store) SaveSettings(settings Settings) error {
	return s.put(KeySettings, settings)
}
