package ir

import "github.com/roach88/multiverse/internal/emotion"

// Effect is a sealed interface for the state changes an event carries.
// Only types in this package can implement it.
type Effect interface {
	effectNode() // Marker method, unexported
	Kind() string
}

// CharacterDeath marks the character dead.
type CharacterDeath struct {
	Character CharacterID `json:"character"`
}

func (CharacterDeath) effectNode() {}

// Kind returns the variant tag.
func (CharacterDeath) Kind() string { return "character_death" }

// CharacterResurrection brings a character back. Mechanism must be non-empty
// for death finality to accept it.
type CharacterResurrection struct {
	Character CharacterID `json:"character"`
	Mechanism string      `json:"mechanism"`
}

func (CharacterResurrection) effectNode() {}

// Kind returns the variant tag.
func (CharacterResurrection) Kind() string { return "character_resurrection" }

// RelationshipChange sets both characters' entry for each other to State.
type RelationshipChange struct {
	Character1 CharacterID       `json:"character1"`
	Character2 CharacterID       `json:"character2"`
	State      RelationshipState `json:"new_state"`
}

func (RelationshipChange) effectNode() {}

// Kind returns the variant tag.
func (RelationshipChange) Kind() string { return "relationship_change" }

// KnowledgeGained adds a knowledge flag.
type KnowledgeGained struct {
	Character CharacterID `json:"character"`
	Flag      string      `json:"knowledge_flag"`
}

func (KnowledgeGained) effectNode() {}

// Kind returns the variant tag.
func (KnowledgeGained) Kind() string { return "knowledge_gained" }

// MemoryTransfer copies a memory to To. From is informational; the giver
// keeps the memory.
type MemoryTransfer struct {
	Memory MemoryID     `json:"memory"`
	From   *CharacterID `json:"from,omitempty"`
	To     CharacterID  `json:"to"`
}

func (MemoryTransfer) effectNode() {}

// Kind returns the variant tag.
func (MemoryTransfer) Kind() string { return "memory_transfer" }

// TimelineBranch records that a branch happened. It has no state change of its
// own; use Multiverse.CreateTimelineBranch to create the timeline.
type TimelineBranch struct {
	NewTimeline TimelineID `json:"new_timeline"`
}

func (TimelineBranch) effectNode() {}

// Kind returns the variant tag.
func (TimelineBranch) Kind() string { return "timeline_branch" }

// AppraisalTrigger runs an emotional appraisal on the character.
type AppraisalTrigger struct {
	Character CharacterID    `json:"character"`
	Belief    emotion.Belief `json:"belief"`
}

func (AppraisalTrigger) effectNode() {}

// Kind returns the variant tag.
func (AppraisalTrigger) Kind() string { return "appraisal_trigger" }

// AddGoal inserts or replaces a goal on the character.
type AddGoal struct {
	Character CharacterID  `json:"character"`
	Goal      emotion.Goal `json:"goal"`
}

func (AddGoal) effectNode() {}

// Kind returns the variant tag.
func (AddGoal) Kind() string { return "add_goal" }

// Compile-time interface satisfaction checks
var (
	_ Effect = CharacterDeath{}
	_ Effect = CharacterResurrection{}
	_ Effect = RelationshipChange{}
	_ Effect = KnowledgeGained{}
	_ Effect = MemoryTransfer{}
	_ Effect = TimelineBranch{}
	_ Effect = AppraisalTrigger{}
	_ Effect = AddGoal{}
)
