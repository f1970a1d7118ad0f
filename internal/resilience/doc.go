// Package resilience groups the fault tolerance helpers used by the ingest
// worker and the database layer.
//
//	cb := circuitbreaker.New(circuitbreaker.GDELTConfig())
//	body, err := circuitbreaker.Do(cb, func() ([]byte, error) {
//	    return download(ctx, url)
//	})
//
//	err := retry.WithBackoff(ctx, retry.GDELTConfig(), func() error {
//	    return fetchSlot(ctx, slot)
//	})
package resilience
