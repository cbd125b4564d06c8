package camera

import (
	"errors"
	"reflect"
	"testing"
)

func TestRegistry_AddKeepsOrder(t *testing.T) {
	r := NewRegistry()
	names := []string{"front", "back", "front", "garage"}
	for i, name := range names {
		if got := r.Add(name, DeviceSource(i)); got != i {
			t.Errorf("Add(%q) returned index %d, want %d", name, got, i)
		}
	}

	items := r.List()
	if len(items) != len(names) {
		t.Fatalf("Expected %d items, got %d", len(names), len(items))
	}
	for i, item := range items {
		if item.Index != i || item.Name != names[i] {
			t.Errorf("Item %d: got (%d, %q), want (%d, %q)", i, item.Index, item.Name, i, names[i])
		}
		entry, err := r.Get(i)
		if err != nil {
			t.Fatalf("Get(%d) failed: %v", i, err)
		}
		if d, _ := entry.Source.Device(); d != i {
			t.Errorf("Get(%d): expected device %d, got %d", i, i, d)
		}
	}
}

func TestRegistry_RemoveShiftsLaterEntries(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"a", "b", "c", "d"} {
		r.Add(name, URLSource("rtsp://"+name))
	}

	if err := r.Remove(1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	want := []Item{{0, "a"}, {1, "c"}, {2, "d"}}
	if got := r.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("List after remove = %v, want %v", got, want)
	}
	if r.Len() != 3 {
		t.Errorf("Expected length 3, got %d", r.Len())
	}
}

func TestRegistry_OutOfRange(t *testing.T) {
	r := NewRegistry()
	r.Add("a", DeviceSource(0))
	r.Add("b", DeviceSource(1))
	before := r.List()

	for _, index := range []int{-1, 2, 10} {
		err := r.Remove(index)
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Remove(%d): expected ErrIndexOutOfRange, got %v", index, err)
		}
		var indexErr *IndexError
		if !errors.As(err, &indexErr) || indexErr.Index != index || indexErr.Len != 2 {
			t.Errorf("Remove(%d): unexpected error %#v", index, err)
		}

		if _, err := r.Get(index); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Get(%d): expected ErrIndexOutOfRange, got %v", index, err)
		}
	}

	if got := r.List(); !reflect.DeepEqual(got, before) {
		t.Errorf("Registry changed after failed removes: %v", got)
	}
}

func TestRegistry_SeededScenario(t *testing.T) {
	r := DefaultRegistry()

	r.Add("RTSP Cam 1", URLSource("rtsp://host/stream"))
	want := []Item{{0, "Local camera"}, {1, "RTSP Cam 1"}}
	if got := r.List(); !reflect.DeepEqual(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}

	if err := r.Remove(0); err != nil {
		t.Fatalf("Remove(0) failed: %v", err)
	}
	want = []Item{{0, "RTSP Cam 1"}}
	if got := r.List(); !reflect.DeepEqual(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}

	entry, err := r.Get(0)
	if err != nil {
		t.Fatalf("Get(0) failed: %v", err)
	}
	if entry.Name != "RTSP Cam 1" {
		t.Errorf("Expected name RTSP Cam 1, got %q", entry.Name)
	}
	if u, ok := entry.Source.URL(); !ok || u != "rtsp://host/stream" {
		t.Errorf("Expected URL source rtsp://host/stream, got %v", entry.Source)
	}

	if _, err := r.Get(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Get(1): expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestRegistry_IndexOfFollowsRemoval(t *testing.T) {
	r := NewRegistry()
	r.Add("a", DeviceSource(0))
	r.Add("b", DeviceSource(1))
	r.Add("b", DeviceSource(1))

	third, _ := r.Get(2)
	second, _ := r.Get(1)
	if third.ID == "" || third.ID == second.ID {
		t.Fatalf("Expected distinct IDs, got %q and %q", second.ID, third.ID)
	}

	if err := r.Remove(0); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if i, ok := r.IndexOf(third.ID); !ok || i != 1 {
		t.Errorf("IndexOf = (%d, %v), want (1, true)", i, ok)
	}
	if _, ok := r.IndexOf("missing"); ok {
		t.Error("Expected unknown ID to be absent")
	}
}
