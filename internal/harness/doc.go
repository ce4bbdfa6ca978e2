// Package harness runs scripted multiverse scenarios and checks their
// outcome.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: death_needs_resurrection
//	description: "A dead character cannot take part in later events"
//	steps:
//	  - op: create_character
//	    name: Vera
//	  - op: record_event
//	    label: fall
//	    description: "Vera falls from the bridge"
//	    participants: [Vera]
//	    effects:
//	      - kind: character_death
//	        character: Vera
//	  - op: record_event
//	    description: "Vera speaks at the funeral"
//	    participants: [Vera]
//	expect:
//	  - fails: death_finality
//	    message: "Vera"
//	  - character: Vera
//	    alive: false
//
// Characters are referenced by name; timelines, events, and memories by the
// label of the step that created them. The root timeline is "root".
//
// # Validation
//
// Loading a scenario runs three passes:
//
//  1. Strict YAML decoding (unknown fields are errors)
//  2. The embedded CUE #Scenario schema (value shapes and enumerations)
//  3. Reference ordering (nothing is used before a step creates it)
//
// # Expectations
//
//   - holds: "all" or a property name; the property must hold
//   - fails: a property name that must be violated, with optional message substring
//   - character: state checks (alive, timeline, knows, remembers, perceives,
//     relationships, feels)
//
// # Golden Outcomes
//
// A Result renders as canonical JSON. RunWithGolden compares it against
// testdata/golden/{name}.golden with goldie.
package harness
