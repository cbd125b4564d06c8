// pkg/camera/camera.go
package camera

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type SourceKind int

const (
	DeviceKind SourceKind = iota
	URLKind
)

// ErrEmptySource is returned by ParseSource for blank input.
var ErrEmptySource = errors.New("camera source is empty")

// Source identifies what a capture session opens: a local device by index or a
// stream URL that is handed to the capture backend untouched.
type Source struct {
	kind   SourceKind
	device int
	url    string
}

func DeviceSource(index int) Source {
	return Source{kind: DeviceKind, device: index}
}

func URLSource(u string) Source {
	return Source{kind: URLKind, url: u}
}

// ParseSource converts user input into a Source. A run of decimal digits selects a
// local device and is rejected when it does not fit in an int. Any other non-empty
// text is treated as a stream URL.
func ParseSource(text string) (Source, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Source{}, ErrEmptySource
	}
	if isDigits(text) {
		index, err := strconv.Atoi(text)
		if err != nil {
			return Source{}, fmt.Errorf("invalid device index %q: %w", text, err)
		}
		return DeviceSource(index), nil
	}
	return URLSource(text), nil
}

func (s Source) Kind() SourceKind { return s.kind }

// Device returns the device index and whether the source is a local device.
func (s Source) Device() (int, bool) {
	return s.device, s.kind == DeviceKind
}

// URL returns the raw stream URL, credentials included.
func (s Source) URL() (string, bool) {
	return s.url, s.kind == URLKind
}

// String renders the source for display and logs, with URL passwords redacted.
func (s Source) String() string {
	if s.kind == DeviceKind {
		return fmt.Sprintf("device %d", s.device)
	}
	u, err := url.Parse(s.url)
	if err != nil || u.User == nil {
		return s.url
	}
	return u.Redacted()
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
