package audit

import (
	"context"
	"fmt"
	"sync"
)

// Outcome is the settled result of one task: a value or an error, never both
// meaningful at once.
type Outcome[T any] struct {
	Value T
	Err   error
}

// SettleAll launches every task concurrently and waits for all of them to
// settle. Each outcome is captured independently: one task's error (or panic)
// never rejects the aggregate or cancels its siblings. The returned slice is
// index-aligned with tasks.
func SettleAll[T any](ctx context.Context, tasks []func(context.Context) (T, error)) []Outcome[T] {
	outcomes := make([]Outcome[T], len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task func(context.Context) (T, error)) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i].Err = fmt.Errorf("task panicked: %v", r)
				}
			}()
			outcomes[i].Value, outcomes[i].Err = task(ctx)
		}(i, task)
	}
	wg.Wait()

	return outcomes
}
