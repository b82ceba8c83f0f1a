// Package fingerprint derives stable content hashes for ingredient sections.
//
// The fingerprint is a pure function of the ordered (type, content) pairs of a
// record's sections. Two records with identical ordered sections hash
// identically regardless of ids, timestamps, or display metadata; permuting the
// sections changes the hash.
//
// # Canonical Form
//
// Sections are rendered as "{type}:{content}" in stored order and joined with
// the ASCII record separator (0x1E) before hashing with SHA-256. The separator
// keeps "a:b" + "c" distinct from "a" + "b:c" style collisions across section
// boundaries.
package fingerprint
