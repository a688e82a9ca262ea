// Package memory provides durable, two-tier conversation memory.
//
// Entries live in one of two retention tiers, distinguished by ExpiresAt:
//   - Short-term (STM): TTL-bound entries, capped per user on write
//   - Long-term (LTM): permanent entries, removed only with the owning user
//
// Architecture:
//   - Store: the tiered storage contract (sqlite-backed implementation in
//     store/sqlite; any keyed store with range and substring queries works)
//   - Sweeper: optional periodic prune so reads never re-check expiry
//
// Integration:
//   - ANALYZE phase: the orchestrator loads relevant context before routing
//   - EXECUTE phase: each responder unit fetches its own narrower slice
//   - PERSIST phase: the finished conversation is written as a compound
//     record (one LTM entry, per-exchange STM entries, the result row)
//
// The compound conversation write is atomic in the sqlite implementation;
// the interface only promises best-effort, so weaker backends surface
// partial failure as an error without rollback.
package memory
