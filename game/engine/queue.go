package engine

import (
	"sync"

	"github.com/google/uuid"
)

// Queue is the bounded, ordered list of commands a player builds before a
// run. It knows nothing about the grid.
type Queue struct {
	mu       sync.RWMutex
	max      int
	commands []Command
	locked   bool
}

// NewQueue creates an empty queue holding at most max commands
func NewQueue(max int) *Queue {
	if max < 0 {
		max = 0
	}
	return &Queue{
		max:      max,
		commands: []Command{},
	}
}

// Append adds a command with a fresh id. A full or locked queue is left
// untouched and the rejection is reported as ErrQueueFull or ErrQueueLocked.
func (q *Queue) Append(dir Direction) (Command, error) {
	dir, err := ParseDirection(string(dir))
	if err != nil {
		return Command{}, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.locked {
		return Command{}, ErrQueueLocked
	}
	if len(q.commands) >= q.max {
		return Command{}, ErrQueueFull
	}

	cmd := Command{
		ID:        uuid.NewString(),
		Direction: dir,
	}
	q.commands = append(q.commands, cmd)
	return cmd, nil
}

// Restore replaces the queue content with previously issued commands,
// truncating to the cap. Used when reloading a persisted session.
func (q *Queue) Restore(cmds []Command) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(cmds) > q.max {
		cmds = cmds[:q.max]
	}
	q.commands = make([]Command, len(cmds))
	copy(q.commands, cmds)
}

// Clear empties the queue
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.locked {
		return ErrQueueLocked
	}
	q.commands = []Command{}
	return nil
}

// Snapshot returns a copy of the queued commands
func (q *Queue) Snapshot() []Command {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]Command, len(q.commands))
	copy(out, q.commands)
	return out
}

// Len returns the number of queued commands
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.commands)
}

// Cap returns the maximum queue length
func (q *Queue) Cap() int {
	return q.max
}

// Full reports whether another Append would be rejected for length
func (q *Queue) Full() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.commands) >= q.max
}

// Lock blocks mutation while a run is in progress
func (q *Queue) Lock() {
	q.mu.Lock()
	q.locked = true
	q.mu.Unlock()
}

// Unlock re-enables mutation
func (q *Queue) Unlock() {
	q.mu.Lock()
	q.locked = false
	q.mu.Unlock()
}

// Locked reports whether a run currently holds the queue
func (q *Queue) Locked() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.locked
}
