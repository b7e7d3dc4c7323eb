// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package background runs the fire-and-forget side effects of an export
// (image downloads, post writes) and lets the run wait for them before exit.
package background

import (
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Group schedules tasks whose failures are logged and counted but never
// returned to the caller that scheduled them.
type Group struct {
	g         errgroup.Group
	log       *zap.Logger
	scheduled atomic.Int64
	failed    atomic.Int64
}

// NewGroup returns a Group running at most limit tasks at once. A limit
// below 1 means no limit.
func NewGroup(limit int, logger *zap.Logger) *Group {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Group{log: logger}
	if limit > 0 {
		g.g.SetLimit(limit)
	}
	return g
}

// Go runs fn in the background. When the group is at its limit Go blocks
// until a slot frees up. An error from fn is logged with the task name.
func (g *Group) Go(name string, fn func() error) {
	g.scheduled.Add(1)
	g.g.Go(func() error {
		if err := fn(); err != nil {
			g.failed.Add(1)
			g.log.Warn("background task failed", zap.String("task", name), zap.Error(err))
		}
		return nil
	})
}

// Stats reports how many tasks were scheduled and how many failed so far.
type Stats struct {
	Scheduled int
	Failed    int
}

// Wait blocks until every scheduled task has finished.
func (g *Group) Wait() Stats {
	_ = g.g.Wait()
	return Stats{
		Scheduled: int(g.scheduled.Load()),
		Failed:    int(g.failed.Load()),
	}
}
