// Package transfer reads and writes the portable JSON task file.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sandeepkv93/taskdesk/internal/model"
)

var (
	ErrMalformed   = errors.New("transfer: malformed file")
	ErrMissingList = errors.New("transfer: tasks field missing or not an array")
)

type File struct {
	Tasks      []model.Task `json:"tasks"`
	ExportDate time.Time    `json:"exportDate"`
}

type ImportResult struct {
	Tasks      []model.Task
	ExportDate time.Time
}

// Importer is the store side of Merge.
type Importer interface {
	ImportTasks(tasks []model.Task) (added, replaced int, err error)
}

func Export(w io.Writer, tasks []model.Task, now time.Time) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(File{Tasks: tasks, ExportDate: now}); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// Import decodes a task file. The tasks field must be present and an
// array; otherwise the whole file is rejected.
func Import(r io.Reader) (ImportResult, error) {
	var envelope struct {
		Tasks      json.RawMessage `json:"tasks"`
		ExportDate *time.Time      `json:"exportDate"`
	}
	if err := json.NewDecoder(r).Decode(&envelope); err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	raw := bytes.TrimSpace(envelope.Tasks)
	if len(raw) == 0 || raw[0] != '[' {
		return ImportResult{}, ErrMissingList
	}
	var tasks []model.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	out := ImportResult{Tasks: tasks}
	if envelope.ExportDate != nil {
		out.ExportDate = *envelope.ExportDate
	}
	return out, nil
}

// Merge applies an import to dst, all or nothing.
func Merge(dst Importer, res ImportResult) (added, replaced int, err error) {
	return dst.ImportTasks(res.Tasks)
}
