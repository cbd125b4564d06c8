// Package opencv opens camera sources through OpenCV.
package opencv

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/AlverezYari/camdeck/pkg/camera"
	"gocv.io/x/gocv"
)

type gocvCapturer struct {
	cap *gocv.VideoCapture
	bgr gocv.Mat
	rgb gocv.Mat
}

// Open opens a local device index or stream URL. It satisfies camera.Opener.
func Open(source camera.Source) (camera.Capturer, error) {
	cap, err := gocv.OpenVideoCapture(target(source))
	if err != nil {
		return nil, err
	}
	if !cap.IsOpened() {
		return nil, errors.Join(fmt.Errorf("camera %s is not open", source), cap.Close())
	}
	return &gocvCapturer{
		cap: cap,
		bgr: gocv.NewMat(),
		rgb: gocv.NewMat(),
	}, nil
}

func (c *gocvCapturer) Read() (camera.Frame, error) {
	if ok := c.cap.Read(&c.bgr); !ok {
		if !c.cap.IsOpened() {
			return camera.Frame{}, camera.ErrDeviceLost
		}
		return camera.Frame{}, io.EOF
	}
	if c.bgr.Empty() {
		return camera.Frame{}, io.EOF
	}

	return convert(c.bgr, &c.rgb)
}

// convert turns a BGR Mat into an RGB Frame, using rgb as scratch space. OpenCV
// decodes to BGR; consumers get RGB. ToBytes copies, so the frame survives the next
// conversion into rgb.
func convert(bgr gocv.Mat, rgb *gocv.Mat) (camera.Frame, error) {
	if err := gocv.CvtColor(bgr, rgb, gocv.ColorBGRToRGB); err != nil {
		return camera.Frame{}, fmt.Errorf("failed to convert frame to RGB: %w", err)
	}
	if rgb.Empty() {
		return camera.Frame{}, fmt.Errorf("failed to convert frame to RGB: empty result")
	}
	return camera.Frame{
		Width:  rgb.Cols(),
		Height: rgb.Rows(),
		Stride: rgb.Step(),
		Pix:    rgb.ToBytes(),
		At:     time.Now(),
	}, nil
}

func (c *gocvCapturer) Close() error {
	err := errors.Join(c.bgr.Close(), c.rgb.Close(), c.cap.Close())
	if err != nil {
		return fmt.Errorf("error closing capture: %w", err)
	}
	return nil
}

// target is the value OpenCV expects: an int for devices, the raw URL otherwise.
func target(source camera.Source) interface{} {
	if index, ok := source.Device(); ok {
		return index
	}
	u, _ := source.URL()
	return u
}
