// Package postcommit runs the side effects that follow a committed state
// transition. Every task has its own failure boundary: an error or panic is
// logged and never propagates to the caller or to the remaining tasks.
package postcommit

import (
	"context"
	"fmt"
	"log/slog"
)

type Task struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Result reports the outcome of one task, mostly for tests and logs.
type Result struct {
	Name string
	Err  error
}

// Run executes tasks sequentially and returns their outcomes.
func Run(ctx context.Context, tasks ...Task) []Result {
	results := make([]Result, 0, len(tasks))
	for _, task := range tasks {
		err := runOne(ctx, task)
		if err != nil {
			slog.Warn("post-commit task failed", "task", task.Name, "error", err)
		}
		results = append(results, Result{Name: task.Name, Err: err})
	}
	return results
}

func runOne(ctx context.Context, task Task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return task.Fn(ctx)
}
