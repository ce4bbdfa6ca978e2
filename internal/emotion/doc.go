// Package emotion implements the appraisal-based emotional state carried by
// every character.
//
// Appraisal turns a Belief about the world into likelihood changes on the
// character's goals, and those changes into emitted emotions:
//
//	Belief → goal likelihood delta → emotions (type, intensity) → PAD
//
// Emotions of the same type accumulate additively. PAD() squashes the
// intensity-weighted Pleasure/Arousal/Dominance sums through a gain-controlled
// hyperbolic function so every axis stays strictly inside (-1, 1) for a
// finite gain.
//
// The package imports nothing internal. State is a plain value mutated by a
// single owner; it is not safe for concurrent use.
package emotion
