package emotion

import (
	"encoding/json"
	"fmt"
)

// Type identifies one of the sixteen emotions produced by appraisal.
type Type int

const (
	Distress Type = iota
	Fear
	Hope
	Joy
	Satisfaction
	FearConfirmed
	Disappointment
	Relief
	HappyFor
	Resentment
	Pity
	Gloating
	Gratitude
	Anger
	Gratification
	Remorse
)

// AllTypes lists every emotion type in declaration order.
var AllTypes = []Type{
	Distress, Fear, Hope, Joy, Satisfaction, FearConfirmed, Disappointment, Relief,
	HappyFor, Resentment, Pity, Gloating, Gratitude, Anger, Gratification, Remorse,
}

var typeNames = [...]string{
	Distress:       "distress",
	Fear:           "fear",
	Hope:           "hope",
	Joy:            "joy",
	Satisfaction:   "satisfaction",
	FearConfirmed:  "fear-confirmed",
	Disappointment: "disappointment",
	Relief:         "relief",
	HappyFor:       "happy-for",
	Resentment:     "resentment",
	Pity:           "pity",
	Gloating:       "gloating",
	Gratitude:      "gratitude",
	Anger:          "anger",
	Gratification:  "gratification",
	Remorse:        "remorse",
}

// padTable holds the fixed Pleasure/Arousal/Dominance vector per type.
var padTable = [...][3]float64{
	Distress:       {-0.61, 0.28, -0.36},
	Fear:           {-0.64, 0.6, -0.43},
	Hope:           {0.51, 0.23, 0.14},
	Joy:            {0.76, 0.48, 0.35},
	Satisfaction:   {0.87, 0.2, 0.62},
	FearConfirmed:  {-0.61, 0.06, -0.32},
	Disappointment: {-0.61, -0.15, -0.29},
	Relief:         {0.29, -0.19, -0.28},
	HappyFor:       {0.64, 0.35, 0.25},
	Resentment:     {-0.35, 0.35, 0.29},
	Pity:           {-0.52, 0.02, -0.21},
	Gloating:       {-0.45, 0.48, 0.42},
	Gratitude:      {0.64, 0.16, -0.21},
	Anger:          {-0.51, 0.59, 0.25},
	Gratification:  {0.69, 0.57, 0.63},
	Remorse:        {-0.57, 0.28, -0.34},
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	return t >= Distress && t <= Remorse
}

// String returns the kebab-case name ("fear-confirmed").
func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("emotion(%d)", int(t))
	}
	return typeNames[t]
}

// PAD returns the type's fixed Pleasure/Arousal/Dominance vector.
// Invalid types contribute nothing.
func (t Type) PAD() [3]float64 {
	if !t.Valid() {
		return [3]float64{}
	}
	return padTable[t]
}

// ParseType resolves a kebab-case emotion name.
func ParseType(name string) (Type, error) {
	for _, t := range AllTypes {
		if typeNames[t] == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown emotion type %q", name)
}

// MarshalJSON encodes the type by name.
func (t Type) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("marshal emotion type: invalid value %d", int(t))
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a type name.
func (t *Type) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("unmarshal emotion type: %w", err)
	}
	parsed, err := ParseType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Emotion is one accumulated (type, intensity) entry.
type Emotion struct {
	Type      Type    `json:"type"`
	Intensity float64 `json:"intensity"`
}
