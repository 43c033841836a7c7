package particle

import "sync"

// ParallelFor executes fn over [0, n) split into at most workers contiguous
// chunks. The worker index passed to fn is stable for a given (n, workers),
// so callers may keep per-worker partial results and merge them in order.
// Small ranges run inline on the calling goroutine as worker 0.
func ParallelFor(n, workers, minChunk int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		fn(0, 0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(worker, s, e int) {
			defer wg.Done()
			fn(worker, s, e)
		}(w, start, end)
	}

	wg.Wait()
}
