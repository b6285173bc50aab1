// Package pool runs a fixed-size goroutine pool over a level's thumbnail
// tasks, collecting results in task order with cancellation and stall
// detection.
package pool

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/jikhanjung/ctharvester/internal/ctherrors"
	"github.com/jikhanjung/ctharvester/internal/pixelworker"
)

// Options configures a single RunLevel call.
type Options struct {
	Workers               int
	GCIntervalTasks       int           // call runtime.GC() every N completed tasks (0 disables)
	StallThreshold        time.Duration // warn if no task completes within this window
	CancelGrace           time.Duration // how long to wait for in-flight tasks after cancellation
	OnTaskStarted         func(outputIndex int)
	OnTaskCompleted       func(res pixelworker.Result)
	OnStalled             func(completed, total, activeWorkers int, elapsed time.Duration)
}

// LevelOutcome is the aggregated result of running every task for a level.
type LevelOutcome struct {
	Buffers        map[int]*pixelworker.PixelBuffer
	Completed      int
	GeneratedCount int
	LoadedCount    int
	Cancelled      bool
	Errors         []*ctherrors.TaskError
}

// OrderedBuffers returns the collected buffers in ascending output-index
// order, skipping any index with no array (e.g. above the in-memory
// cutoff), matching get_ordered_results's skip-if-missing behavior.
func (o LevelOutcome) OrderedBuffers(totalTasks int) []*pixelworker.PixelBuffer {
	out := make([]*pixelworker.PixelBuffer, 0, totalTasks)
	for i := 0; i < totalTasks; i++ {
		if buf, ok := o.Buffers[i]; ok && buf != nil {
			out = append(out, buf)
		}
	}
	return out
}

// RunLevel dispatches tasks across Options.Workers goroutines, gated by a
// buffered task channel, and collects results in a single mutex-guarded map
// keyed by OutputIndex so duplicate results (should never happen, but
// mirrored from the Qt implementation's defensive check) are detected and
// dropped rather than silently overwriting.
func RunLevel(ctx context.Context, tasks []pixelworker.Task, opts Options) LevelOutcome {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	taskChan := make(chan pixelworker.Task, len(tasks))
	for _, t := range tasks {
		taskChan <- t
	}
	close(taskChan)

	resultChan := make(chan pixelworker.Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskChan {
				if opts.OnTaskStarted != nil {
					opts.OnTaskStarted(task.OutputIndex)
				}
				resultChan <- pixelworker.Run(ctx, task)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	return collect(ctx, resultChan, len(tasks), opts)
}

// collect reads results off resultChan, deduplicating by OutputIndex,
// tallying generated/loaded counts, watching for stalls, and honoring
// cancellation with a bounded grace period for results already in flight.
func collect(ctx context.Context, resultChan <-chan pixelworker.Result, total int, opts Options) LevelOutcome {
	outcome := LevelOutcome{Buffers: make(map[int]*pixelworker.PixelBuffer, total)}

	seen := make(map[int]struct{}, total)
	var mu sync.Mutex

	stallThreshold := opts.StallThreshold
	if stallThreshold <= 0 {
		stallThreshold = 60 * time.Second
	}
	cancelGrace := opts.CancelGrace
	if cancelGrace <= 0 {
		cancelGrace = 2 * time.Second
	}

	start := time.Now()
	lastProgress := start
	ticker := time.NewTicker(stallThreshold)
	defer ticker.Stop()

	graceDeadline := time.Time{}

	for outcome.Completed < total {
		select {
		case res, ok := <-resultChan:
			if !ok {
				return outcome
			}
			mu.Lock()
			if _, dup := seen[res.OutputIndex]; dup {
				mu.Unlock()
				continue
			}
			seen[res.OutputIndex] = struct{}{}
			mu.Unlock()

			outcome.Completed++
			lastProgress = time.Now()

			if res.Err != nil {
				if ctherrors.IsCancelled(res.Err) {
					outcome.Cancelled = true
				} else if taskErr, ok := res.Err.(*ctherrors.TaskError); ok {
					outcome.Errors = append(outcome.Errors, taskErr)
				}
			} else {
				if res.WasGenerated {
					outcome.GeneratedCount++
				} else {
					outcome.LoadedCount++
				}
				if res.Array != nil {
					outcome.Buffers[res.OutputIndex] = res.Array
				}
			}

			if opts.OnTaskCompleted != nil {
				opts.OnTaskCompleted(res)
			}
			if opts.GCIntervalTasks > 0 && outcome.Completed%opts.GCIntervalTasks == 0 {
				runtime.GC()
			}

		case <-ticker.C:
			if time.Since(lastProgress) >= stallThreshold && opts.OnStalled != nil {
				opts.OnStalled(outcome.Completed, total, 0, time.Since(start))
			}

		case <-ctx.Done():
			outcome.Cancelled = true
			if graceDeadline.IsZero() {
				graceDeadline = time.Now().Add(cancelGrace)
			}
			if time.Now().After(graceDeadline) {
				return outcome
			}
			// Keep draining already-in-flight results until the grace
			// period elapses or everything finishes.
			select {
			case res, ok := <-resultChan:
				if !ok {
					return outcome
				}
				mu.Lock()
				if _, dup := seen[res.OutputIndex]; !dup {
					seen[res.OutputIndex] = struct{}{}
					outcome.Completed++
					if res.Err == nil {
						if res.WasGenerated {
							outcome.GeneratedCount++
						} else {
							outcome.LoadedCount++
						}
						if res.Array != nil {
							outcome.Buffers[res.OutputIndex] = res.Array
						}
					}
				}
				mu.Unlock()
			case <-time.After(cancelGrace):
				return outcome
			}
		}
	}

	return outcome
}
