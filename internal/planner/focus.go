package planner

import (
	"context"
	"time"

	"github.com/sadopc/planner/internal/backend"
	"github.com/sadopc/planner/internal/mapper"
	"github.com/sadopc/planner/internal/model"
)

// StartFocusSession opens a session and returns its id.
func (s *Store) StartFocusSession(ctx context.Context, taskID *string, typ model.SessionType) (string, error) {
	if typ == "" {
		typ = model.SessionPomodoro
	}
	row, err := s.gw.FocusSessions.Create(ctx, mapper.SessionToDB(model.FocusSession{
		StartTime: s.now(),
		TaskID:    taskID,
		Type:      typ,
	}))
	if err != nil {
		return "", s.fail("start focus session", err)
	}
	created := mapper.DBSessionToSession(*row)

	s.mu.Lock()
	s.focusSessions = append(s.focusSessions, created)
	s.mu.Unlock()
	return created.ID, nil
}

// EndFocusSession closes an open session, recording whole elapsed minutes.
// Ending a session that is already closed is a no-op.
func (s *Store) EndFocusSession(ctx context.Context, id string) error {
	session, ok := s.FocusSession(id)
	if !ok {
		return ErrNotFound
	}
	if !session.Open() {
		return nil
	}

	end := s.now()
	duration := int(end.Sub(session.StartTime) / time.Minute)
	if duration < 0 {
		duration = 0
	}
	patch := backend.Fields{"end_time": end, "duration": duration, "completed": true}
	if _, err := s.gw.FocusSessions.Update(ctx, id, patch); err != nil {
		return s.fail("end focus session", err)
	}

	s.mu.Lock()
	for i := range s.focusSessions {
		if s.focusSessions[i].ID == id {
			s.focusSessions[i].EndTime = &end
			s.focusSessions[i].Duration = duration
			s.focusSessions[i].Completed = true
		}
	}
	s.mu.Unlock()
	return nil
}

// OpenFocusSession returns the most recently started open session.
func (s *Store) OpenFocusSession() (model.FocusSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found model.FocusSession
	ok := false
	for _, fs := range s.focusSessions {
		if fs.Open() && (!ok || fs.StartTime.After(found.StartTime)) {
			found, ok = fs, true
		}
	}
	return found, ok
}

// FocusMinutesByDay sums completed session minutes per local day in
// [from, to], keyed by date. Days without sessions are present with 0.
func (s *Store) FocusMinutesByDay(from, to time.Time) map[string]int {
	out := make(map[string]int)
	y, m, d := from.Local().Date()
	last := model.FormatDate(to)
	for i := 0; ; i++ {
		day := model.FormatDate(time.Date(y, m, d+i, 12, 0, 0, 0, time.Local))
		if day > last {
			break
		}
		out[day] = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fs := range s.focusSessions {
		if !fs.Completed {
			continue
		}
		day := model.FormatDate(fs.StartTime)
		if _, ok := out[day]; ok {
			out[day] += fs.Duration
		}
	}
	return out
}
