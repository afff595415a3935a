// Package atlas turns sprite sheet descriptions into normalized UV rectangles.
package atlas

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/vovakirdan/spritecore/internal/core"
)

// Atlas maps frame names to UV rectangles on one texture.
type Atlas struct {
	Texture core.TextureID
	uv      map[string]core.UVRect
}

// New creates an atlas from an explicit UV map.
func New(tex core.TextureID, uv map[string]core.UVRect) *Atlas {
	if uv == nil {
		uv = make(map[string]core.UVRect)
	}
	return &Atlas{Texture: tex, uv: uv}
}

// UV returns the rectangle for name.
func (a *Atlas) UV(name string) (core.UVRect, error) {
	if uv, ok := a.uv[name]; ok {
		return uv, nil
	}
	return core.UVRect{}, &core.ArgError{Op: "atlas", Reason: "unknown atlas name: " + name}
}

// Names returns the frame names in sorted order.
func (a *Atlas) Names() []string {
	names := make([]string, 0, len(a.uv))
	for name := range a.uv {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of frames.
func (a *Atlas) Len() int {
	return len(a.uv)
}

// --- JSON structure types ---

type jsonRect struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	W float32 `json:"w"`
	H float32 `json:"h"`
}

// jsonFrame accepts both the flat form {"x","y","w","h"} and the
// TexturePacker form {"frame": {"x","y","w","h"}}.
type jsonFrame struct {
	jsonRect
	Frame *jsonRect `json:"frame"`
}

type jsonDoc struct {
	Frames map[string]jsonFrame `json:"frames"`
	Width  float32              `json:"width"`
	Height float32              `json:"height"`
	Meta   struct {
		Size struct {
			W float32 `json:"w"`
			H float32 `json:"h"`
		} `json:"size"`
	} `json:"meta"`
}

// Parse reads an atlas document. The sheet size comes from the document's
// width/height or meta.size; sheetW and sheetH are the fallback (usually the
// probed texture size) and 1 is used when nothing is known, which leaves
// frame coordinates untouched.
func Parse(data []byte, tex core.TextureID, sheetW, sheetH int) (*Atlas, error) {
	var doc jsonDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("atlas: failed to parse atlas JSON: %w", err)
	}
	if doc.Frames == nil {
		return nil, fmt.Errorf("atlas: atlas JSON has no \"frames\" key")
	}

	w := firstPositive(doc.Width, doc.Meta.Size.W, float32(sheetW), 1)
	h := firstPositive(doc.Height, doc.Meta.Size.H, float32(sheetH), 1)

	uv := make(map[string]core.UVRect, len(doc.Frames))
	for name, f := range doc.Frames {
		r := f.jsonRect
		if f.Frame != nil {
			r = *f.Frame
		}
		uv[name] = core.UVRect{
			U0: r.X / w,
			V0: r.Y / h,
			U1: (r.X + r.W) / w,
			V1: (r.Y + r.H) / h,
		}
	}
	return New(tex, uv), nil
}

// Load reads and parses an atlas document from disk.
func Load(path string, tex core.TextureID, sheetW, sheetH int) (*Atlas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("atlas: failed to read %s: %w", path, err)
	}
	return Parse(data, tex, sheetW, sheetH)
}

func firstPositive(vals ...float32) float32 {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 1
}
