// Package factory assembles pages from a compiled content library.
//
// For every slot in a page's layout the factory:
//
//  1. Resolves the slot's pool through the chain intent → kind → default.
//     The most specific pool found supplies its own variants first; an
//     "inherit" pool then appends the next level's variants it does not
//     already have (matched by ID), a "replace" pool ends the chain.
//  2. Seeds selection with ir.SelectionSeed(city, intent, slot) and picks
//     the layout's number of distinct variants.
//  3. Substitutes page variables into every field of the picked variants.
//
// Assembly is a pure function of (library, page key). There is no clock,
// randomness, or shared state, so a page renders identically on every build.
package factory
