// Package publish exports derived Markdown pages (task briefs, content plans). The
// SQLite store stays canonical; these files are meant to be shared or committed
// elsewhere.
package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"contentdesk/internal/model"
	"contentdesk/internal/schedule"
	"contentdesk/internal/store"
)

type WriteOptions struct {
	Overwrite bool
	// Events maps task id to the history rendered on its page.
	Events map[int64][]model.Event
}

type WriteResult struct {
	Written []string `json:"written"`
}

func WriteTask(db *store.DB, taskID int64, toDir string, opt WriteOptions) (WriteResult, error) {
	if db == nil {
		return WriteResult{}, errors.New("missing db")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	md, err := RenderTaskMarkdown(db, taskID, RenderOptions{Events: opt.Events[taskID]})
	if err != nil {
		return WriteResult{}, err
	}

	outDir := filepath.Join(toDir, "tasks")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	outPath := filepath.Join(outDir, taskFileName(taskID)+".md")
	if err := writeFile(outPath, []byte(md), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: []string{outPath}}, nil
}

// WriteSchedule writes the plan index for v plus one page per scheduled task:
//
//	<to>/plans/<granularity>-<start>/index.md
//	<to>/plans/<granularity>-<start>/tasks/task-<id>.md
func WriteSchedule(db *store.DB, v schedule.View, toDir string, opt WriteOptions) (WriteResult, error) {
	if db == nil {
		return WriteResult{}, errors.New("missing db")
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	planDir := filepath.Join(toDir, "plans", string(v.Granularity)+"-"+string(v.Start))
	if err := os.MkdirAll(planDir, 0o755); err != nil {
		return WriteResult{}, err
	}
	indexPath := filepath.Join(planDir, "index.md")
	if err := writeFile(indexPath, []byte(RenderScheduleMarkdown(v)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}

	// Task pages: stop on first error.
	written := []string{indexPath}
	for _, b := range v.Buckets {
		for _, t := range b.Tasks {
			res, err := WriteTask(db, t.ID, planDir, opt)
			if err != nil {
				return WriteResult{}, err
			}
			written = append(written, res.Written...)
		}
	}
	return WriteResult{Written: written}, nil
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
