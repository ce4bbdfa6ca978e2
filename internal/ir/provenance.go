package ir

// Provenance is a sealed interface describing how a memory came to exist.
type Provenance interface {
	provenanceNode()
	Kind() string
}

// Witnessed memories were formed by a character present at the event.
type Witnessed struct {
	Character CharacterID `json:"character"`
}

func (Witnessed) provenanceNode() {}

// Kind returns the variant tag.
func (Witnessed) Kind() string { return "witnessed" }

// Traded memories were acquired from another character.
type Traded struct {
	OriginalOwner CharacterID `json:"original_owner"`
	AcquiredVia   string      `json:"acquired_via"`
}

func (Traded) provenanceNode() {}

// Kind returns the variant tag.
func (Traded) Kind() string { return "traded" }

// Forged memories were fabricated. Forger must be non-empty.
type Forged struct {
	Forger string `json:"forger"`
}

func (Forged) provenanceNode() {}

// Kind returns the variant tag.
func (Forged) Kind() string { return "forged" }

// Compound memories are stitched together from other memories.
type Compound struct {
	Sources []MemoryID `json:"sources"`
}

func (Compound) provenanceNode() {}

// Kind returns the variant tag.
func (Compound) Kind() string { return "compound" }

var (
	_ Provenance = Witnessed{}
	_ Provenance = Traded{}
	_ Provenance = Forged{}
	_ Provenance = Compound{}
)
