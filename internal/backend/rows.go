package backend

import "time"

// Row shapes mirror the table columns. Nullable columns are pointers.

type UserRow struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProjectRow struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Color       *string   `json:"color"`
	Icon        *string   `json:"icon"`
	StartDate   *string   `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TaskRow struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	ProjectID        *string   `json:"project_id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description"`
	Completed        bool      `json:"completed"`
	Priority         string    `json:"priority"`
	Category         string    `json:"category"`
	DueDate          *string   `json:"due_date"`
	DueTime          *string   `json:"due_time"`
	EstimatedMinutes *int      `json:"estimated_minutes"`
	ActualMinutes    *int      `json:"actual_minutes"`
	Status           string    `json:"status"`
	Order            int       `json:"order"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type TimeBlockRow struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProjectID *string   `json:"project_id"`
	Title     string    `json:"title"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Date      string    `json:"date"`
	Category  string    `json:"category"`
	Color     *string   `json:"color"`
	TaskID    *string   `json:"task_id"`
	IsBlocked bool      `json:"is_blocked"`
	CreatedAt time.Time `json:"created_at"`
}

type DailyGoalRow struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProjectID *string   `json:"project_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Date      string    `json:"date"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

type HabitRow struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Icon        string    `json:"icon"`
	Frequency   string    `json:"frequency"`
	TargetCount int       `json:"target_count"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`

	// Populated by ListHabits only.
	Completions []HabitCompletionRow `json:"habit_completions,omitempty"`
}

type HabitCompletionRow struct {
	ID            string    `json:"id"`
	HabitID       string    `json:"habit_id"`
	CompletedDate string    `json:"completed_date"`
	CreatedAt     time.Time `json:"created_at"`
}

type FocusSessionRow struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Duration  int        `json:"duration"`
	TaskID    *string    `json:"task_id"`
	Type      string     `json:"type"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"created_at"`
}
