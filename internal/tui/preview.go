package tui

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/AlverezYari/camdeck/pkg/camera"
	"github.com/charmbracelet/lipgloss"
)

// renderFrame draws a frame into at most cols x rows terminal cells. Each cell
// carries two vertically stacked pixels using the upper half block, which keeps
// pixels roughly square on common terminal fonts.
func renderFrame(f camera.Frame, cols, rows int) string {
	if f.Empty() || cols < 1 || rows < 1 {
		return ""
	}

	w, h := fit(f.Width, f.Height, cols, rows*2)
	if h%2 == 1 {
		h--
	}
	if w < 1 || h < 2 {
		return ""
	}

	var b strings.Builder
	for y := 0; y < h; y += 2 {
		top := (y * f.Height) / h
		bottom := ((y + 1) * f.Height) / h
		for x := 0; x < w; x++ {
			sx := (x * f.Width) / w
			b.WriteString(lipgloss.NewStyle().
				Foreground(hex(f.RGBAt(sx, top))).
				Background(hex(f.RGBAt(sx, bottom))).
				Render("▀"))
		}
		if y+2 < h {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// fit scales w x h to fit inside maxW x maxH, keeping the aspect ratio.
func fit(w, h, maxW, maxH int) (int, int) {
	if w*maxH > h*maxW {
		return maxW, h * maxW / w
	}
	return w * maxH / h, maxH
}

func hex(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
