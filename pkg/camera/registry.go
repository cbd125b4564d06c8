package camera

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrIndexOutOfRange matches every *IndexError via errors.Is.
var ErrIndexOutOfRange = errors.New("camera index out of range")

type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("camera index %d out of range [0,%d)", e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}

// Entry is one configured camera. Entries are never edited in place.
type Entry struct {
	ID     string
	Name   string
	Source Source
}

// Item is the display projection of an Entry.
type Item struct {
	Index int
	Name  string
}

// Registry is the ordered list of configured cameras. Position is both display
// order and address; removing an entry shifts every later entry down by one.
// A Registry is owned by a single goroutine.
type Registry struct {
	entries []Entry
}

func NewRegistry(seed ...Entry) *Registry {
	r := &Registry{entries: make([]Entry, 0, len(seed))}
	for _, e := range seed {
		r.Add(e.Name, e.Source)
	}
	return r
}

// DefaultRegistry returns a registry holding the local webcam.
func DefaultRegistry() *Registry {
	return NewRegistry(Entry{Name: "Local camera", Source: DeviceSource(0)})
}

// Add appends a camera and returns its index. Duplicates are allowed.
func (r *Registry) Add(name string, source Source) int {
	r.entries = append(r.entries, Entry{
		ID:     uuid.NewString(),
		Name:   name,
		Source: source,
	})
	return len(r.entries) - 1
}

func (r *Registry) Remove(index int) error {
	if err := r.check(index); err != nil {
		return err
	}
	r.entries = append(r.entries[:index], r.entries[index+1:]...)
	return nil
}

func (r *Registry) Get(index int) (Entry, error) {
	if err := r.check(index); err != nil {
		return Entry{}, err
	}
	return r.entries[index], nil
}

func (r *Registry) List() []Item {
	items := make([]Item, len(r.entries))
	for i, e := range r.entries {
		items[i] = Item{Index: i, Name: e.Name}
	}
	return items
}

func (r *Registry) Len() int {
	return len(r.entries)
}

// IndexOf resolves a stable entry ID to its current position.
func (r *Registry) IndexOf(id string) (int, bool) {
	for i, e := range r.entries {
		if e.ID == id {
			return i, true
		}
	}
	return -1, false
}

func (r *Registry) check(index int) error {
	if index < 0 || index >= len(r.entries) {
		return &IndexError{Index: index, Len: len(r.entries)}
	}
	return nil
}
