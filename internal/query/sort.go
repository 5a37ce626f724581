package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

var ErrUnknownSortField = errors.New("query: unknown sort field")

type SortField int

const (
	SortByCreatedAt SortField = iota
	SortByUpdatedAt
	SortByTitle
	SortByDueDate
	SortByPriority
	SortByStatus
)

var sortFieldNames = map[SortField]string{
	SortByCreatedAt: "createdAt",
	SortByUpdatedAt: "updatedAt",
	SortByTitle:     "title",
	SortByDueDate:   "dueDate",
	SortByPriority:  "priority",
	SortByStatus:    "status",
}

func (f SortField) String() string {
	if name, ok := sortFieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("SortField(%d)", int(f))
}

// ParseSortField accepts the camelCase field names plus snake/lower variants.
func ParseSortField(raw string) (SortField, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(raw), "_", ""))
	switch key {
	case "due":
		key = "duedate"
	case "created":
		key = "createdat"
	case "updated":
		key = "updatedat"
	}
	for field, name := range sortFieldNames {
		if strings.ToLower(name) == key {
			return field, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSortField, raw)
}

type Direction int

const (
	Descending Direction = iota
	Ascending
)

func (d Direction) String() string {
	if d == Ascending {
		return "asc"
	}
	return "desc"
}

func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc", "ascending", "up":
		return Ascending, nil
	case "", "desc", "descending", "down":
		return Descending, nil
	default:
		return 0, fmt.Errorf("query: unknown sort direction %q", raw)
	}
}

// Sort zero value is newest-created first.
type Sort struct {
	Field     SortField
	Direction Direction
}

func DefaultSort() Sort {
	return Sort{Field: SortByCreatedAt, Direction: Descending}
}

func (s Sort) String() string {
	return s.Field.String() + ":" + s.Direction.String()
}

// SortTasks sorts in place and is stable. A missing value on either side
// compares equal, so tasks without a due date keep their relative position
// instead of sinking or floating.
func SortTasks(tasks []model.Task, s Sort) {
	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		c := compareField(a, b, s.Field)
		if s.Direction == Descending {
			return -c
		}
		return c
	})
}

func compareField(a, b model.Task, field SortField) int {
	switch field {
	case SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortByDueDate:
		if a.DueDate == nil || b.DueDate == nil {
			return 0
		}
		return a.DueDate.Compare(*b.DueDate)
	case SortByPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case SortByStatus:
		return a.Status.Rank() - b.Status.Rank()
	default:
		return 0
	}
}
