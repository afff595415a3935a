package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// upperHalf paints the top pixel of a cell in the foreground color and the
// bottom pixel in the background color.
const upperHalf = "▀"

type cellColors struct {
	top, bottom color.RGBA
}

// RenderImage draws img into a cols x rows block of terminal cells, two
// pixels per cell. The image is scaled with nearest sampling, keeps its
// aspect ratio and is centred. Adjacent cells with the same colors share one
// style run to keep the escape sequences short.
func RenderImage(img image.Image, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	b := img.Bounds()
	iw, ih := b.Dx(), b.Dy()
	if iw == 0 || ih == 0 {
		return strings.Repeat(strings.Repeat(" ", cols)+"\n", rows-1) + strings.Repeat(" ", cols)
	}

	scale := min(float64(cols)/float64(iw), float64(rows*2)/float64(ih))
	outW := max(int(float64(iw)*scale), 1)
	outH := max(int(float64(ih)*scale), 2)
	padX := (cols - outW) / 2
	padY := (rows*2 - outH) / 4

	sample := func(x, y int) color.RGBA {
		if x < 0 || y < 0 || x >= outW || y >= outH {
			return color.RGBA{A: 255}
		}
		sx := b.Min.X + min(int(float64(x)/scale), iw-1)
		sy := b.Min.Y + min(int(float64(y)/scale), ih-1)
		return color.RGBAModel.Convert(img.At(sx, sy)).(color.RGBA)
	}

	var sb strings.Builder
	sb.Grow(cols*rows*4 + rows)
	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteRune('\n')
		}
		py := (row - padY) * 2

		x := 0
		for x < cols {
			start := cellColors{sample(x-padX, py), sample(x-padX, py+1)}
			n := 0
			for x < cols {
				c := cellColors{sample(x-padX, py), sample(x-padX, py+1)}
				if c != start {
					break
				}
				n++
				x++
			}
			style := lipgloss.NewStyle().
				Foreground(hexColor(start.top)).
				Background(hexColor(start.bottom))
			sb.WriteString(style.Render(strings.Repeat(upperHalf, n)))
		}
	}
	return sb.String()
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	w := lipgloss.Width(text)
	if w >= width {
		return text
	}
	padding := (width - w) / 2
	return strings.Repeat(" ", padding) + text
}
