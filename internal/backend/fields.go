package backend

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Fields is a partial update keyed by column name. A nil value clears a
// nullable column.
type Fields map[string]any

type colKind int

const (
	colText colKind = iota
	colInt
	colBool
	colTime
)

type column struct {
	kind     colKind
	nullable bool
}

// Columns each table accepts in an update. Anything else is rejected.
var (
	projectColumns = map[string]column{
		"title":       {colText, false},
		"description": {colText, true},
		"color":       {colText, true},
		"icon":        {colText, true},
		"start_date":  {colText, true},
		"end_date":    {colText, true},
		"type":        {colText, false},
	}
	taskColumns = map[string]column{
		"project_id":        {colText, true},
		"title":             {colText, false},
		"description":       {colText, true},
		"completed":         {colBool, false},
		"priority":          {colText, false},
		"category":          {colText, false},
		"due_date":          {colText, true},
		"due_time":          {colText, true},
		"estimated_minutes": {colInt, true},
		"actual_minutes":    {colInt, true},
		"status":            {colText, false},
		"order":             {colInt, false},
	}
	timeBlockColumns = map[string]column{
		"project_id": {colText, true},
		"title":      {colText, false},
		"start_time": {colText, false},
		"end_time":   {colText, false},
		"date":       {colText, false},
		"category":   {colText, false},
		"color":      {colText, true},
		"task_id":    {colText, true},
		"is_blocked": {colBool, false},
	}
	dailyGoalColumns = map[string]column{
		"project_id": {colText, true},
		"title":      {colText, false},
		"completed":  {colBool, false},
		"date":       {colText, false},
		"order":      {colInt, false},
	}
	focusSessionColumns = map[string]column{
		"end_time":  {colTime, true},
		"duration":  {colInt, false},
		"task_id":   {colText, true},
		"type":      {colText, false},
		"completed": {colBool, false},
	}
)

// setClause validates f against cols and renders `"a" = ?, "b" = ?` in a
// stable column order.
func setClause(f Fields, cols map[string]column) (string, []any, error) {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)

	var parts []string
	var args []any
	for _, name := range names {
		col, ok := cols[name]
		if !ok {
			return "", nil, fmt.Errorf("%w: unknown column %q", ErrInvalid, name)
		}
		v, err := normalize(f[name], col)
		if err != nil {
			return "", nil, fmt.Errorf("%w: column %q: %v", ErrInvalid, name, err)
		}
		parts = append(parts, fmt.Sprintf("%q = ?", name))
		args = append(args, v)
	}
	return strings.Join(parts, ", "), args, nil
}

func normalize(v any, col column) (any, error) {
	if v == nil {
		if !col.nullable {
			return nil, fmt.Errorf("not nullable")
		}
		return nil, nil
	}
	switch col.kind {
	case colText:
		switch s := v.(type) {
		case string:
			return s, nil
		case *string:
			if s == nil {
				return normalize(nil, col)
			}
			return *s, nil
		}
	case colInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n != float64(int64(n)) {
				return nil, fmt.Errorf("not an integer: %v", n)
			}
			return int64(n), nil
		case *int:
			if n == nil {
				return normalize(nil, col)
			}
			return int64(*n), nil
		}
	case colBool:
		if b, ok := v.(bool); ok {
			if b {
				return 1, nil
			}
			return 0, nil
		}
	case colTime:
		switch t := v.(type) {
		case time.Time:
			return formatTime(t), nil
		case *time.Time:
			if t == nil {
				return normalize(nil, col)
			}
			return formatTime(*t), nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return nil, err
			}
			return formatTime(parsed), nil
		}
	}
	return nil, fmt.Errorf("unexpected type %T", v)
}
