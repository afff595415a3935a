// Package window presents engine frames in a desktop window with ebiten.
// Each batch becomes one DrawTriangles32 call into the virtual canvas, and
// the canvas is letterboxed onto the window with the mode's scaling policy.
package window

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/vovakirdan/spritecore/internal/batch"
	"github.com/vovakirdan/spritecore/internal/canvas"
	"github.com/vovakirdan/spritecore/internal/core"
	"github.com/vovakirdan/spritecore/internal/engine"
	"github.com/vovakirdan/spritecore/internal/texture"
)

// errQuit ends the game loop without reporting a failure.
var errQuit = errors.New("window: quit")

// Options configures the window.
type Options struct {
	Title  string
	Width  int // initial window size; the virtual size by default
	Height int
	Logger *log.Logger
}

// Game adapts an Engine to ebiten.Game.
type Game struct {
	eng      *engine.Engine
	logger   *log.Logger
	frame    *engine.Frame
	canvas   *ebiten.Image
	white    *ebiten.Image
	textures map[core.TextureID]*ebiten.Image
	keys     []ebiten.Key
	verts    []ebiten.Vertex
	inds     []uint32
	present  canvas.Presentation
}

// New creates a Game for a started engine.
func New(eng *engine.Engine, logger *log.Logger) *Game {
	if logger == nil {
		logger = log.Default()
	}
	vw, vh := eng.Mode().Size()
	white := ebiten.NewImage(1, 1)
	white.Fill(color.White)
	return &Game{
		eng:      eng,
		logger:   logger,
		canvas:   ebiten.NewImage(int(vw), int(vh)),
		white:    white,
		textures: make(map[core.TextureID]*ebiten.Image),
	}
}

// Update reads input and steps the engine with wall-clock time.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}
	g.eng.SetInput(g.snapshot())

	f, err := g.eng.StepAt(time.Now())
	if err != nil {
		return err
	}
	g.frame = f
	return nil
}

// snapshot builds the input snapshot for this frame.
func (g *Game) snapshot() core.InputSnapshot {
	var in core.InputSnapshot
	g.keys = inpututil.AppendPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		in.Press(keyName(k.String()))
	}

	buttons := []struct {
		b  ebiten.MouseButton
		id int
	}{
		{ebiten.MouseButtonLeft, core.MouseLeft},
		{ebiten.MouseButtonRight, core.MouseRight},
		{ebiten.MouseButtonMiddle, core.MouseMiddle},
	}
	for _, mb := range buttons {
		if ebiten.IsMouseButtonPressed(mb.b) {
			in.PressButton(mb.id)
		}
	}

	cx, cy := ebiten.CursorPosition()
	if vx, vy, ok := g.present.WindowToVirtual(float32(cx), float32(cy)); ok {
		in.MouseX, in.MouseY = float64(vx), float64(vy)
	}
	return in
}

// keyName maps an ebiten key name to the snapshot name: "ArrowLeft" becomes
// "left", "Space" becomes "space", letters are lowercased.
func keyName(s string) string {
	s = strings.ToLower(s)
	return strings.TrimPrefix(s, "arrow")
}

// Draw renders the last stepped frame.
func (g *Game) Draw(screen *ebiten.Image) {
	f := g.frame
	if f == nil {
		return
	}

	c := f.ClearColor
	g.canvas.Fill(color.NRGBA{R: unit8(c.R), G: unit8(c.G), B: unit8(c.B), A: unit8(c.A)})

	ppu := f.PixelsPerUnit
	if ppu <= 0 {
		ppu = 1
	}
	for _, b := range f.Batches {
		img := g.texture(f, b.Texture)
		sz := img.Bounds().Size()

		// Quads are contiguous: 4 vertices per 6 indices.
		first := int(b.StartIndex) / 6 * 4
		count := int(b.IndexCount) / 6 * 4
		g.verts = appendVertices(g.verts[:0], f.Vertices[first:first+count], ppu, float32(sz.X), float32(sz.Y))
		g.inds = g.inds[:0]
		for _, i := range f.Indices[b.StartIndex : b.StartIndex+b.IndexCount] {
			g.inds = append(g.inds, i-uint32(first))
		}

		var op ebiten.DrawTrianglesOptions
		g.canvas.DrawTriangles32(g.verts, g.inds, img, &op)
	}

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	g.present = canvas.Present(float32(sw), float32(sh), f.Mode)
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(float64(g.present.Scale), float64(g.present.Scale))
	op.GeoM.Translate(float64(g.present.Viewport.X), float64(g.present.Viewport.Y))
	if g.present.Filter == canvas.Linear {
		op.Filter = ebiten.FilterLinear
	}
	screen.DrawImage(g.canvas, &op)
}

// appendVertices converts batch vertices into ebiten vertices. Positions go
// from world units to canvas pixels and UVs to texel coordinates.
func appendVertices(dst []ebiten.Vertex, src []batch.Vertex, ppu, texW, texH float32) []ebiten.Vertex {
	for _, v := range src {
		dst = append(dst, ebiten.Vertex{
			DstX:   v.X * ppu,
			DstY:   v.Y * ppu,
			SrcX:   v.U * texW,
			SrcY:   v.V * texH,
			ColorR: v.R,
			ColorG: v.G,
			ColorB: v.B,
			ColorA: v.A,
		})
	}
	return dst
}

// texture uploads a texture on first use. Unknown or undecodable textures
// draw as white.
func (g *Game) texture(f *engine.Frame, id core.TextureID) *ebiten.Image {
	if img, ok := g.textures[id]; ok {
		return img
	}
	img := g.white
	if f.Textures != nil {
		if slot, ok := f.Textures.Texture(id); ok {
			decoded, err := texture.Decode(slot.Bytes, slot.Format, slot.Width, slot.Height)
			if err != nil {
				g.logger.Warn("texture decode failed", "texture", slot.Name, "error", err)
			} else {
				img = ebiten.NewImageFromImage(decoded)
			}
		}
	}
	g.textures[id] = img
	return img
}

// Layout uses the window size as the screen size; Draw letterboxes itself.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func unit8(v float32) uint8 {
	return uint8(core.ClampF(float64(v), 0, 1)*255 + 0.5)
}

// Run opens the window and blocks until it is closed or Escape is pressed.
func Run(eng *engine.Engine, opts Options) error {
	vw, vh := eng.Mode().Size()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = int(vw), int(vh)
	}
	if opts.Title == "" {
		opts.Title = fmt.Sprintf("spritecore - %s", eng.Script().Title())
	}

	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	err := ebiten.RunGame(New(eng, opts.Logger))
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}
