package causal

import (
	"iter"

	"github.com/matzehuels/causeway/pkg/doors"
	"github.com/matzehuels/causeway/pkg/nodeset"
)

// BackDoor returns the first minimal backdoor set for (cause, effect), or
// false when none exists. Latent variables are never part of the set.
func (m *Model) BackDoor(cause, effect string) (nodeset.Set, bool, error) {
	return first(doors.Backdoor(m.g, cause, effect, m.latents))
}

// FrontDoor returns the first minimal frontdoor set for (cause, effect), or
// false when none exists.
func (m *Model) FrontDoor(cause, effect string) (nodeset.Set, bool, error) {
	return first(doors.Frontdoor(m.g, cause, effect, m.latents))
}

// BackDoors returns every minimal backdoor set for (cause, effect).
func (m *Model) BackDoors(cause, effect string) iter.Seq2[nodeset.Set, error] {
	return doors.Backdoor(m.g, cause, effect, m.latents)
}

// FrontDoors returns every minimal frontdoor set for (cause, effect).
func (m *Model) FrontDoors(cause, effect string) iter.Seq2[nodeset.Set, error] {
	return doors.Frontdoor(m.g, cause, effect, m.latents)
}

func first(seq iter.Seq2[nodeset.Set, error]) (nodeset.Set, bool, error) {
	for s, err := range seq {
		if err != nil {
			return nil, false, err
		}
		return s, true, nil
	}
	return nil, false, nil
}
