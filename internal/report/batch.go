package report

import "sync"

// runAll launches every task concurrently and waits for all of them,
// returning one error per failed task. Sibling tasks are never cancelled
// when one fails: their outcomes are collected so a partial submission can
// be diagnosed in full, not just by its first failure.
func runAll(tasks []func() error) []error {
	var wg sync.WaitGroup
	results := make([]error, len(tasks))

	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task func() error) {
			defer wg.Done()
			results[i] = task()
		}(i, task)
	}
	wg.Wait()

	var errs []error
	for _, err := range results {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
