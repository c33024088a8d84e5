// Package memory provides an in-process throttle.Repository for single
// instance deployments and tests.
//
// Counters are CounterRecord values held in an expiring Cache. The record
// carries its own absolute expiration, set once when the window starts and
// copied unchanged by every later increment:
//
//	repo, err := memory.New(memory.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer repo.Close()
//
// All expirations are computed from the configured Clock, which makes the
// repository deterministic under a fake clock. A cron-driven janitor sweeps
// expired entries in the background; readers never see them in between.
//
// Unlike the distributed repository, SetLock removes the counter before
// installing the lock.
package memory
