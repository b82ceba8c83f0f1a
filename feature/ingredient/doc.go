// Package ingredient owns the canonical formulary records and their
// reconciliation state.
//
// Every ingredient id carries up to three representations: the canonical
// record (the accepted current truth), an immutable baseline snapshot taken
// at first import, and a mutable working copy. The reconcile store keeps the
// three consistent: compare classifies a working copy against its baseline,
// revert restores baseline content into the working copy, and delete removes
// all three together.
//
// All record and working copy writes are optimistic: callers name the
// version they observed and a stale write fails with a conflict instead of
// silently overwriting.
package ingredient
