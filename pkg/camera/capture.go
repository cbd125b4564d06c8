package camera

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// ErrDeviceLost is returned by Read when the handle closed underneath the reader.
var ErrDeviceLost = errors.New("capture device lost")

// Capturer is an open device or stream handle. Read blocks until the next frame is
// decoded. It returns io.EOF at the end of a stream; any other error means the
// device failed. Close releases the handle.
type Capturer interface {
	Read() (Frame, error)
	Close() error
}

// Opener opens a Capturer for a source.
type Opener func(Source) (Capturer, error)

// OpenError reports that a source could not be opened.
type OpenError struct {
	Source Source
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("error opening camera %s: %v", e.Source, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// ScanDevices probes local device indices below limit and returns those that open.
// Indices in skip are neither opened nor returned, so a device already held by a
// live session is left alone. Each probed handle is closed before the next is tried.
func ScanDevices(open Opener, limit int, skip ...int) []int {
	var found []int
	for i := 0; i < limit; i++ {
		if slices.Contains(skip, i) {
			continue
		}
		c, err := open(DeviceSource(i))
		if err != nil {
			continue
		}
		if err := c.Close(); err != nil {
			slog.Warn("failed to release probe", "device", i, "error", err)
		}
		found = append(found, i)
	}
	return found
}
