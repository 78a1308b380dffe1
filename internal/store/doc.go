// Package store defines the persistence interfaces the progress engine
// depends on: the series aggregate store with optimistic version checks and
// the read-only item catalogs. Implementations live under
// internal/platform/postgres and internal/platform/memory.
package store
