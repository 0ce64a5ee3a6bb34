package engine

import "github.com/vovakirdan/tilerules/internal/world"

type change struct {
	actor       world.Actor
	deleted     bool
	actionIndex int
}

// FrameAccumulator buffers the post-action snapshots of each actor during a
// tick and replays them as frames.
type FrameAccumulator struct {
	initial map[string]world.Actor
	order   []string // actor ids in order of first change
	changes map[string][]change
}

// NewFrameAccumulator starts a buffer over the tick's initial actors.
func NewFrameAccumulator(initial *world.ActorSet) *FrameAccumulator {
	return &FrameAccumulator{
		initial: initial.Snapshot(),
		changes: make(map[string][]change),
	}
}

// Push buffers a snapshot of a after the action at index.
func (f *FrameAccumulator) Push(a *world.Actor, index int) {
	f.add(change{actor: *a.Clone(), actionIndex: index})
}

// PushDeleted buffers the removal of an actor.
func (f *FrameAccumulator) PushDeleted(a *world.Actor, index int) {
	f.add(change{actor: *a.Clone(), deleted: true, actionIndex: index})
}

// Fold merges a snapshot into the actor's last buffered change instead of
// adding a step. With nothing buffered it behaves like Push.
func (f *FrameAccumulator) Fold(a *world.Actor, deleted bool, index int) {
	list := f.changes[a.ID]
	if len(list) == 0 {
		f.add(change{actor: *a.Clone(), deleted: deleted, actionIndex: index})
		return
	}
	list[len(list)-1] = change{actor: *a.Clone(), deleted: deleted, actionIndex: index}
}

func (f *FrameAccumulator) add(c change) {
	id := c.actor.ID
	if _, seen := f.changes[id]; !seen {
		f.order = append(f.order, id)
	}
	f.changes[id] = append(f.changes[id], c)
}

// Steps returns the largest number of changes buffered for one actor.
func (f *FrameAccumulator) Steps() int {
	steps := 0
	for _, list := range f.changes {
		if len(list) > steps {
			steps = len(list)
		}
	}
	return steps
}

// Frames replays the buffer. Frame k is frame k-1 with each actor's k-th
// change applied; actors with fewer changes keep their last state and a
// deletion removes the actor from later frames. With no changes a single
// frame of the initial actors is returned. Ids start at firstID.
func (f *FrameAccumulator) Frames(firstID int) []world.Frame {
	current := make(map[string]world.Actor, len(f.initial))
	for id, a := range f.initial {
		current[id] = a
	}

	steps := f.Steps()
	if steps == 0 {
		return []world.Frame{{ID: firstID, Actors: current}}
	}

	frames := make([]world.Frame, 0, steps)
	for k := 0; k < steps; k++ {
		next := make(map[string]world.Actor, len(current))
		for id, a := range current {
			next[id] = a
		}
		for _, id := range f.order {
			list := f.changes[id]
			if k >= len(list) {
				continue
			}
			if list[k].deleted {
				delete(next, id)
			} else {
				next[id] = list[k].actor
			}
		}
		frames = append(frames, world.Frame{ID: firstID + k, Actors: next})
		current = next
	}
	return frames
}
