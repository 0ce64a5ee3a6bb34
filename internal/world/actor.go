// Package world defines the data model the rule engine operates on: worlds,
// stages, actors, characters and their rule trees.
//
// Worlds are values. Engine operations return new worlds and never edit the
// caller's; actors inside an ActorSet are replaced rather than modified so
// clones can share unchanged actors.
package world

import (
	"bytes"
	"encoding/gob"
	"encoding/json"

	"github.com/vovakirdan/tilerules/internal/core"
)

// Actor is a positioned instance of a Character on a Stage.
type Actor struct {
	ID             string            `json:"id"`
	CharacterID    string            `json:"characterId"`
	Position       core.Position     `json:"position"`
	Appearance     string            `json:"appearance"`
	Transform      core.Transform    `json:"transform,omitempty"`
	VariableValues map[string]string `json:"variableValues,omitempty"`
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	clone := *a
	clone.VariableValues = make(map[string]string, len(a.VariableValues))
	for k, v := range a.VariableValues {
		clone.VariableValues[k] = v
	}
	return &clone
}

// ActorSet is an insertion-ordered collection of actors keyed by id.
// Clone copies the order and the id index but shares actor pointers, so
// callers must replace an actor (Put a modified clone) instead of editing it.
type ActorSet struct {
	order []string
	byID  map[string]*Actor
}

// NewActorSet creates a set from actors in the given order. Later duplicates
// replace earlier ones in place.
func NewActorSet(actors ...*Actor) *ActorSet {
	s := &ActorSet{byID: make(map[string]*Actor, len(actors))}
	for _, a := range actors {
		s.Put(a)
	}
	return s
}

// Len returns the number of actors.
func (s *ActorSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Get returns the actor with the given id.
func (s *ActorSet) Get(id string) (*Actor, bool) {
	if s == nil {
		return nil, false
	}
	a, ok := s.byID[id]
	return a, ok
}

// Has reports whether an actor with the id exists.
func (s *ActorSet) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Put inserts or replaces an actor. New ids are appended to the order.
func (s *ActorSet) Put(a *Actor) {
	if s.byID == nil {
		s.byID = make(map[string]*Actor)
	}
	if _, exists := s.byID[a.ID]; !exists {
		s.order = append(s.order, a.ID)
	}
	s.byID[a.ID] = a
}

// Delete removes an actor. Missing ids are ignored.
func (s *ActorSet) Delete(id string) {
	if _, ok := s.byID[id]; !ok {
		return
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

// IDs returns a copy of the actor ids in insertion order.
func (s *ActorSet) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// All returns the actors in insertion order.
func (s *ActorSet) All() []*Actor {
	if s == nil {
		return nil
	}
	out := make([]*Actor, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Clone returns a set sharing actor pointers with s.
func (s *ActorSet) Clone() *ActorSet {
	clone := &ActorSet{
		order: make([]string, 0, s.Len()),
		byID:  make(map[string]*Actor, s.Len()),
	}
	if s == nil {
		return clone
	}
	clone.order = append(clone.order, s.order...)
	for id, a := range s.byID {
		clone.byID[id] = a
	}
	return clone
}

// DeepClone returns a set with every actor copied.
func (s *ActorSet) DeepClone() *ActorSet {
	clone := &ActorSet{byID: make(map[string]*Actor, s.Len())}
	for _, a := range s.All() {
		clone.Put(a.Clone())
	}
	return clone
}

// Snapshot returns a copy of every actor keyed by id.
func (s *ActorSet) Snapshot() map[string]Actor {
	out := make(map[string]Actor, s.Len())
	for _, a := range s.All() {
		out[a.ID] = *a.Clone()
	}
	return out
}

// MarshalJSON encodes the set as an ordered list of actors.
func (s *ActorSet) MarshalJSON() ([]byte, error) {
	actors := s.All()
	if actors == nil {
		actors = []*Actor{}
	}
	return json.Marshal(actors)
}

// UnmarshalJSON decodes an ordered list of actors.
func (s *ActorSet) UnmarshalJSON(data []byte) error {
	var actors []*Actor
	if err := json.Unmarshal(data, &actors); err != nil {
		return err
	}
	*s = *NewActorSet(actors...)
	return nil
}

// GobEncode encodes the set as an ordered list of actors.
func (s *ActorSet) GobEncode() ([]byte, error) {
	actors := s.All()
	if actors == nil {
		actors = []*Actor{}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(actors); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode decodes an ordered list of actors.
func (s *ActorSet) GobDecode(data []byte) error {
	var actors []*Actor
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&actors); err != nil {
		return err
	}
	*s = *NewActorSet(actors...)
	return nil
}
