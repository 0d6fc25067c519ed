// Package harness runs content-author scenarios against a compiled library.
//
// A scenario names one or more page keys and a list of assertions about the
// pages they assemble to: which variant a slot picked, which inheritance level
// it came from, whether text made it through substitution, and so on. Authors
// use scenarios to pin the behaviour of pages they care about, so that an edit
// to a shared pool that reshuffles an important page fails loudly in review.
//
// Scenarios are YAML:
//
//	name: austin_pricing
//	description: Pricing intent replaces the default hero
//	keys:
//	  - {kind: city-vertical, city: Austin, state: TX, vertical: plumbing, intent: pricing}
//	assertions:
//	  - {type: variant, slot: hero, variant: hero-pricing}
//	  - {type: level, slot: hero, level: intent}
//	  - {type: contains, slot: hero, text: Austin}
//
// RunWithGolden additionally snapshots the assembled pages with goldie.
package harness
