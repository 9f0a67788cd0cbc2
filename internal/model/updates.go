package model

// Partial updates. A nil field is left unchanged. For optional string fields
// an empty string clears the value, and for optional minutes zero clears it.

type TaskUpdate struct {
	ProjectID        *string
	Title            *string
	Description      *string
	Completed        *bool
	Priority         *Priority
	Category         *Category
	DueDate          *string
	DueTime          *string
	EstimatedMinutes *int
	ActualMinutes    *int
	Status           *Status
	Order            *int
}

func (u TaskUpdate) Apply(t Task) Task {
	if u.ProjectID != nil {
		t.ProjectID = optional(*u.ProjectID)
	}
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = optional(*u.Description)
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Category != nil {
		t.Category = *u.Category
	}
	if u.DueDate != nil {
		t.DueDate = optional(*u.DueDate)
	}
	if u.DueTime != nil {
		t.DueTime = optional(*u.DueTime)
	}
	if u.EstimatedMinutes != nil {
		t.EstimatedMinutes = optionalInt(*u.EstimatedMinutes)
	}
	if u.ActualMinutes != nil {
		t.ActualMinutes = optionalInt(*u.ActualMinutes)
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Order != nil {
		t.Order = *u.Order
	}
	return t
}

type ProjectUpdate struct {
	Title       *string
	Description *string
	Color       *string
	Icon        *string
	StartDate   *string
	EndDate     *string
	Type        *ProjectType
}

func (u ProjectUpdate) Apply(p Project) Project {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = optional(*u.Description)
	}
	if u.Color != nil {
		p.Color = optional(*u.Color)
	}
	if u.Icon != nil {
		p.Icon = optional(*u.Icon)
	}
	if u.StartDate != nil {
		p.StartDate = optional(*u.StartDate)
	}
	if u.EndDate != nil {
		p.EndDate = optional(*u.EndDate)
	}
	if u.Type != nil {
		p.Type = *u.Type
	}
	return p
}

type TimeBlockUpdate struct {
	Title     *string
	StartTime *string
	EndTime   *string
	Date      *string
	Category  *Category
	Color     *string
	TaskID    *string
	IsBlocked *bool
}

func (u TimeBlockUpdate) Apply(b TimeBlock) TimeBlock {
	if u.Title != nil {
		b.Title = *u.Title
	}
	if u.StartTime != nil {
		b.StartTime = *u.StartTime
	}
	if u.EndTime != nil {
		b.EndTime = *u.EndTime
	}
	if u.Date != nil {
		b.Date = *u.Date
	}
	if u.Category != nil {
		b.Category = *u.Category
	}
	if u.Color != nil {
		b.Color = optional(*u.Color)
	}
	if u.TaskID != nil {
		b.TaskID = optional(*u.TaskID)
	}
	if u.IsBlocked != nil {
		b.IsBlocked = *u.IsBlocked
	}
	return b
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}

// Ptr returns a pointer to v, for building updates.
func Ptr[T any](v T) *T {
	return &v
}
