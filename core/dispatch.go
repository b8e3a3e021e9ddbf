package core

import "sync"

// Dispatch runs fn once for every item with at most limit calls in flight,
// and returns after every call has returned. A limit below one is treated as one.
// Completion order is unspecified; fn owns its own failure handling.
func Dispatch[T any](items []T, limit int, fn func(T)) {
	if len(items) == 0 {
		return
	}
	limit = max(1, min(limit, len(items)))

	itemCh := make(chan T, len(items))
	var wg sync.WaitGroup

	for range limit {
		wg.Go(func() {
			for item := range itemCh {
				fn(item)
			}
		})
	}

	for _, item := range items {
		itemCh <- item
	}
	close(itemCh)

	wg.Wait()
}
