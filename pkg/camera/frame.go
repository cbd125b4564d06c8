package camera

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"time"
)

// Frame is one decoded RGB24 image. Pix holds Height rows of Stride bytes, each row
// starting with Width packed R,G,B triples. A delivered Frame owns its buffer.
type Frame struct {
	Seq    uint64
	Width  int
	Height int
	Stride int
	Pix    []byte
	At     time.Time
}

// RGBAt returns the pixel at (x, y).
func (f Frame) RGBAt(x, y int) color.RGBA {
	i := y*f.Stride + x*3
	return color.RGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: 0xff}
}

func (f Frame) Empty() bool {
	return f.Width == 0 || f.Height == 0 || len(f.Pix) == 0
}

// Image copies the frame into an RGBA image for the standard encoders.
func (f Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		src := f.Pix[y*f.Stride : y*f.Stride+f.Width*3]
		dst := img.Pix[y*img.Stride : y*img.Stride+f.Width*4]
		for x := 0; x < f.Width; x++ {
			dst[x*4] = src[x*3]
			dst[x*4+1] = src[x*3+1]
			dst[x*4+2] = src[x*3+2]
			dst[x*4+3] = 0xff
		}
	}
	return img
}

func (f Frame) JPEG(quality int) ([]byte, error) {
	if f.Empty() {
		return nil, fmt.Errorf("frame %d is empty", f.Seq)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.Image(), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode frame %d: %w", f.Seq, err)
	}
	return buf.Bytes(), nil
}
