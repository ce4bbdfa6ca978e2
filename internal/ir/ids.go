package ir

import "fmt"

// TimelineID identifies a timeline. The root timeline is always 0.
type TimelineID uint64

// CharacterID identifies a character.
type CharacterID uint64

// MemoryID identifies a memory.
type MemoryID uint64

// EventID identifies an event.
type EventID uint64

// RootTimeline is the id of the timeline every multiverse starts with.
const RootTimeline TimelineID = 0

func (id TimelineID) String() string  { return fmt.Sprintf("Timeline#%d", uint64(id)) }
func (id CharacterID) String() string { return fmt.Sprintf("Character#%d", uint64(id)) }
func (id MemoryID) String() string    { return fmt.Sprintf("Memory#%d", uint64(id)) }
func (id EventID) String() string     { return fmt.Sprintf("Event#%d", uint64(id)) }
