package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkingstonsqr/tile-notes/models"
)

const dayLayout = "2006-01-02"

// CalendarService lays notes and tasks out on a month grid.
type CalendarService struct {
	notes *NoteSynchronizer
	tasks *TaskSynchronizer
}

func NewCalendarService(notes *NoteSynchronizer, tasks *TaskSynchronizer) *CalendarService {
	return &CalendarService{notes: notes, tasks: tasks}
}

// Month returns only the days of the month that carry a note or a task, in date order.
// Notes are placed on their creation day, tasks on their due day.
func (s *CalendarService) Month(ctx context.Context, owner string, year, month int, loc *time.Location) (*models.CalendarMonth, error) {
	if month < 1 || month > 12 {
		return nil, invalid(fmt.Errorf("month %d out of range", month))
	}
	if loc == nil {
		loc = time.UTC
	}

	notes, err := s.notes.List(ctx, owner, NoteFilter{})
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, owner, TaskFilter{})
	if err != nil {
		return nil, err
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	daysIn := first.AddDate(0, 1, -1).Day()
	days := make([]models.CalendarDay, daysIn)
	for i := range days {
		days[i].Date = first.AddDate(0, 0, i).Format(dayLayout)
	}

	inMonth := func(t time.Time) (int, bool) {
		t = t.In(loc)
		if t.Year() != year || int(t.Month()) != month {
			return 0, false
		}
		return t.Day() - 1, true
	}

	for _, n := range notes {
		if i, ok := inMonth(n.CreatedAt); ok {
			days[i].Notes = append(days[i].Notes, n)
		}
	}
	for _, t := range tasks {
		due, ok := parseDueDate(t.DueDate, loc)
		if !ok {
			continue
		}
		if i, ok := inMonth(due); ok {
			days[i].Tasks = append(days[i].Tasks, t)
		}
	}

	out := &models.CalendarMonth{Year: year, Month: month, Days: []models.CalendarDay{}}
	for _, d := range days {
		if len(d.Notes) > 0 || len(d.Tasks) > 0 {
			out.Days = append(out.Days, d)
		}
	}
	return out, nil
}

// parseDueDate accepts a plain date or an RFC 3339 timestamp. Free text is skipped.
func parseDueDate(due *string, loc *time.Location) (time.Time, bool) {
	if due == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(*due)
	if t, err := time.ParseInLocation(dayLayout, raw, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
