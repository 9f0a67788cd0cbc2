package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/sadopc/planner/internal/model"
	"github.com/spf13/cobra"
)

var (
	header = color.New(color.Bold, color.Underline)
	faint  = color.New(color.Faint)
	done   = color.New(color.FgGreen)
)

var priorityColors = map[model.Priority]*color.Color{
	model.PriorityUrgent: color.New(color.FgRed, color.Bold),
	model.PriorityHigh:   color.New(color.FgHiYellow),
	model.PriorityMedium: color.New(color.FgCyan),
	model.PriorityLow:    color.New(color.Faint),
}

func newTable(columns ...any) *uitable.Table {
	tbl := uitable.New()
	tbl.MaxColWidth = 48
	tbl.Wrap = true
	if len(columns) > 0 {
		for i, c := range columns {
			columns[i] = header.Sprint(c)
		}
		tbl.AddRow(columns...)
	}
	return tbl
}

func printTable(cmd *cobra.Command, tbl *uitable.Table) {
	fmt.Fprintln(cmd.OutOrStdout(), tbl)
}

func priority(p model.Priority) string {
	if c, ok := priorityColors[p]; ok {
		return c.Sprint(p)
	}
	return string(p)
}

func check(b bool) string {
	if b {
		return done.Sprint("✓")
	}
	return faint.Sprint("·")
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return faint.Sprint("-")
	}
	return *s
}

func projectName(id *string, projects map[string]model.Project) string {
	if id == nil {
		return faint.Sprint("-")
	}
	if p, ok := projects[*id]; ok {
		return p.Title
	}
	return faint.Sprint("?")
}
