// Package ir defines the content model shared by every pseo package: page keys,
// variant pools, layouts, and assembled pages.
//
// It also owns the two pieces of determinism the rest of the system relies on:
//
//   - Canonical JSON (RFC 8785) for anything that gets hashed. Object keys are
//     sorted by UTF-16 code units, strings are NFC normalized, floats and null
//     are rejected.
//   - Selection seeds. A page's variant picks are a pure function of its
//     (city, intent) tuple and the slot being filled, so the same page renders
//     identically on every build and on every machine.
//
// All hashes are SHA-256 with domain separation: SHA256(domain + 0x00 + data).
package ir
