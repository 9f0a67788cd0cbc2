// Package model holds the client-side shapes of the six planner resources.
// Relationships between entities are ids, never embedded objects.
package model

import "time"

type ProjectType string

const (
	ProjectTrip     ProjectType = "trip"
	ProjectWork     ProjectType = "work"
	ProjectPersonal ProjectType = "personal"
	ProjectOther    ProjectType = "other"
)

var ProjectTypes = []ProjectType{ProjectTrip, ProjectWork, ProjectPersonal, ProjectOther}

type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategoryLearning Category = "learning"
	CategorySocial   Category = "social"
	// Time blocks only.
	CategoryFocus Category = "focus"
	CategoryBreak Category = "break"
)

var TaskCategories = []Category{CategoryWork, CategoryPersonal, CategoryHealth, CategoryLearning, CategorySocial}

type Status string

const (
	StatusBacklog    Status = "backlog"
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inProgress"
	StatusDone       Status = "done"
)

// Statuses lists the kanban columns in board order.
var Statuses = []Status{StatusBacklog, StatusTodo, StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

type SessionType string

const (
	SessionPomodoro SessionType = "pomodoro"
	SessionDeepWork SessionType = "deepWork"
)

type View string

const (
	ViewDay      View = "day"
	ViewWeek     View = "week"
	ViewMonth    View = "month"
	ViewKanban   View = "kanban"
	ViewTimeline View = "timeline"
	ViewHabits   View = "habits"
	ViewFocus    View = "focus"
	ViewInbox    View = "inbox"
)

type Project struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	Color       *string     `json:"color,omitempty"`
	Icon        *string     `json:"icon,omitempty"`
	StartDate   *string     `json:"startDate,omitempty"`
	EndDate     *string     `json:"endDate,omitempty"`
	Type        ProjectType `json:"type"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type SubTask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// RecurringPattern is carried on tasks and time blocks but no mutation path sets it.
type RecurringPattern struct {
	Type       string  `json:"type"` // daily, weekly, monthly, custom
	Interval   int     `json:"interval"`
	DaysOfWeek []int   `json:"daysOfWeek,omitempty"`
	EndDate    *string `json:"endDate,omitempty"`
}

type Task struct {
	ID               string            `json:"id"`
	ProjectID        *string           `json:"project_id,omitempty"`
	Title            string            `json:"title"`
	Description      *string           `json:"description,omitempty"`
	Completed        bool              `json:"completed"`
	Priority         Priority          `json:"priority"`
	Category         Category          `json:"category"`
	DueDate          *string           `json:"dueDate,omitempty"`
	DueTime          *string           `json:"dueTime,omitempty"`
	EstimatedMinutes *int              `json:"estimatedMinutes,omitempty"`
	ActualMinutes    *int              `json:"actualMinutes,omitempty"`
	Subtasks         []SubTask         `json:"subtasks"`
	Status           Status            `json:"status"`
	Order            int               `json:"order"`
	Recurring        *RecurringPattern `json:"recurring,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

type TimeBlock struct {
	ID        string            `json:"id"`
	ProjectID *string           `json:"project_id,omitempty"`
	Title     string            `json:"title"`
	StartTime string            `json:"startTime"` // "09:00"
	EndTime   string            `json:"endTime"`
	Date      string            `json:"date"`
	Category  Category          `json:"category"`
	Color     *string           `json:"color,omitempty"`
	TaskID    *string           `json:"taskId,omitempty"`
	IsBlocked bool              `json:"isBlocked"`
	Recurring *RecurringPattern `json:"recurring,omitempty"`
}

type DailyGoal struct {
	ID        string  `json:"id"`
	ProjectID *string `json:"project_id,omitempty"`
	Title     string  `json:"title"`
	Completed bool    `json:"completed"`
	Date      string  `json:"date"`
	Order     int     `json:"order"`
}

// Habit does not store its streak; call Streak with the current day.
type Habit struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Icon           string    `json:"icon"`
	Color          string    `json:"color"`
	Frequency      Frequency `json:"frequency"`
	TargetCount    int       `json:"targetCount"`
	CompletedDates []string  `json:"completedDates"`
}

func (h Habit) Streak(today time.Time) int {
	return Streak(h.CompletedDates, today)
}

// Done reports whether date is among the completed dates.
func (h Habit) Done(date string) bool {
	for _, d := range h.CompletedDates {
		if d == date {
			return true
		}
	}
	return false
}

type FocusSession struct {
	ID        string      `json:"id"`
	StartTime time.Time   `json:"startTime"`
	EndTime   *time.Time  `json:"endTime,omitempty"`
	Duration  int         `json:"duration"` // minutes, 0 while open
	TaskID    *string     `json:"taskId,omitempty"`
	Type      SessionType `json:"type"`
	Completed bool        `json:"completed"`
}

// Open reports whether the session has not been ended yet.
func (s FocusSession) Open() bool {
	return s.EndTime == nil
}

// UIState is the cursor state kept between runs.
type UIState struct {
	SelectedDate    string  `json:"selectedDate"`
	SidebarOpen     bool    `json:"sidebarOpen"`
	ActiveView      View    `json:"activeView"`
	ActiveProjectID *string `json:"activeProjectId"`
}
