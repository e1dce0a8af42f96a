package concurrent

import (
	"sync"
)

type IndexFunc func(int)

// ConsumeIndexes runs fn once for every index in [0, count) using at most
// concurrency workers. Callers that need ordered results should write into an
// index-addressed slice from fn.
func ConsumeIndexes(count int, fn IndexFunc, concurrency int) {
	if count == 0 {
		return
	}

	if count < concurrency {
		concurrency = count
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var wg sync.WaitGroup
	wg.Add(concurrency)
	idxCh := make(chan int)
	for i := 0; i < concurrency; i++ {
		go func() {
			for {
				idx, more := <-idxCh
				if !more {
					wg.Done()
					return
				}

				fn(idx)
			}
		}()
	}

	go func() {
		for i := 0; i < count; i++ {
			idxCh <- i
		}

		close(idxCh)
	}()

	wg.Wait()
}

func ConsumeStrings(items []string, fn func(string), concurrency int) {
	ConsumeIndexes(len(items), func(i int) {
		fn(items[i])
	}, concurrency)
}
