// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// The central use case is the generation job: expanding every active
// medication's recurring schedule into concrete doses and materializing
// idempotent adherence and reminder records from that expansion. The
// materializers deduplicate against existing storage state by the records'
// identity keys, so the job is safely re-runnable and safe under overlapping
// manual and scheduled triggers.
//
// Services receive dependencies through constructor injection and depend on
// domain entities and repository interfaces (from store), never on specific
// infrastructure implementations. Every entry point takes the current instant
// as an explicit parameter; the services read no ambient clock for their core
// decisions, which keeps generation deterministic and testable.
package service
