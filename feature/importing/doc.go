// Package importing reconciles externally supplied ingredient batches
// against the canonical formulary.
//
// # Flow
//
// A raw batch (loosely-typed payload entries) is analyzed against the full
// canonical population: every entry is fingerprinted, scored with the
// similarity engine, and classified as an exact match, a near match (with
// per-field differences), or unique. The caller then supplies a merge
// decision per match, and the executor commits the batch record by record,
// reporting progress and collecting per-record errors without aborting.
//
// # Failure Semantics
//
// Malformed entries degrade counts, they do not abort the batch. Only a
// failure to fetch the canonical population is fatal for an analysis call,
// since classification is meaningless against a partial population.
// Execution is best-effort per record: store conflicts and missing merge
// targets are recorded and the loop moves on.
package importing
