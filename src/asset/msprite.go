package asset

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/VriskaSerket51/eastward-go/src/eastward"
	"github.com/VriskaSerket51/eastward-go/src/hmg"
	"github.com/VriskaSerket51/eastward-go/src/value"
)

// Animation is one rendered msprite animation. Every frame has the size of
// Bounds, the union of the bounds of its source frames.
type Animation struct {
	Name   string
	Bounds hmg.Rect
	Frames []*hmg.Image
	Delays []int
}

// MultiSprite holds the animations of an msprite node, sorted by name.
type MultiSprite struct {
	Animations []*Animation
}

type spriteFrame struct {
	image  *hmg.Image
	bounds hmg.Rect
}

func loadMultiSprite(g *eastward.Graph, n *eastward.Node) (eastward.Asset, error) {
	def, err := g.LoadPackedOrJSON(n.ObjectFile("packed_def"), n.ObjectFile("def"))
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, nil
	}

	base := strings.TrimSuffix(n.Name, path.Ext(n.Name))
	peer := n.Path + "/" + base + "_texture"
	a, err := g.LoadAsset(peer)
	if err != nil {
		return nil, err
	}
	tex, ok := a.(*Texture)
	if !ok {
		return nil, fmt.Errorf("%w: texture %s", eastward.ErrMissingDependency, peer)
	}
	return BuildMultiSprite(value.Map(def), tex.Image)
}

// BuildMultiSprite renders the animations described by def from the sprite
// sheet tex. Modules are cut from tex, frames assemble modules, and
// animations sequence frames.
func BuildMultiSprite(def map[string]any, tex *hmg.Image) (*MultiSprite, error) {
	modules := make(map[string]*hmg.Image)
	rects := make(map[string]hmg.Rect)
	for id, m := range value.Map(def["modules"]) {
		r := value.Ints(value.Map(m)["rect"])
		if len(r) < 4 {
			return nil, fmt.Errorf("module %s: rect has %d values", id, len(r))
		}
		rect := hmg.Rect{X: r[0], Y: r[1], W: r[2], H: r[3]}
		rects[id] = rect
		modules[id] = hmg.Crop(tex, rect)
	}

	frames := make(map[string]spriteFrame)
	for id, f := range value.Map(def["frames"]) {
		parts := value.List(value.Map(f)["parts"])
		placed := make([]hmg.Rect, 0, len(parts))
		for _, p := range parts {
			part := value.List(p)
			if len(part) < 3 {
				return nil, fmt.Errorf("frame %s: malformed part", id)
			}
			mid := value.String(part[0])
			r, ok := rects[mid]
			if !ok {
				return nil, fmt.Errorf("frame %s: unknown module %s", id, mid)
			}
			placed = append(placed, hmg.Rect{X: value.Int(part[1]), Y: value.Int(part[2]), W: r.W, H: r.H})
		}

		bounds := hmg.Union(placed...)
		canvas := hmg.New(bounds.W, bounds.H)
		for i, p := range parts {
			hmg.Merge(canvas, modules[value.String(value.List(p)[0])], placed[i].X-bounds.X, placed[i].Y-bounds.Y)
		}
		frames[id] = spriteFrame{image: canvas, bounds: bounds}
	}

	ms := &MultiSprite{}
	for id, an := range value.Map(def["anims"]) {
		am := value.Map(an)
		name := value.String(am["name"])
		if name == "" {
			name = id
		}

		seq := value.List(am["seq"])
		used := make([]spriteFrame, 0, len(seq))
		delays := make([]int, 0, len(seq))
		for _, s := range seq {
			step := value.List(s)
			if len(step) == 0 {
				continue
			}
			fid := value.String(step[0])
			f, ok := frames[fid]
			if !ok {
				return nil, fmt.Errorf("animation %s: unknown frame %s", name, fid)
			}
			used = append(used, f)
			delay := 0
			if len(step) > 1 {
				delay = value.Int(step[1])
			}
			delays = append(delays, delay)
		}

		rs := make([]hmg.Rect, len(used))
		for i, f := range used {
			rs[i] = f.bounds
		}
		bounds := hmg.Union(rs...)

		anim := &Animation{Name: name, Bounds: bounds, Delays: delays}
		for _, f := range used {
			canvas := hmg.New(bounds.W, bounds.H)
			hmg.Merge(canvas, f.image, f.bounds.X-bounds.X, f.bounds.Y-bounds.Y)
			anim.Frames = append(anim.Frames, canvas)
		}
		ms.Animations = append(ms.Animations, anim)
	}
	sort.Slice(ms.Animations, func(i, j int) bool { return ms.Animations[i].Name < ms.Animations[j].Name })
	return ms, nil
}

// Strip lays the frames of a out left to right.
func (a *Animation) Strip() *hmg.Image {
	strip := hmg.New(a.Bounds.W*len(a.Frames), a.Bounds.H)
	for i, f := range a.Frames {
		hmg.Merge(strip, f, i*a.Bounds.W, 0)
	}
	return strip
}

type animationMeta struct {
	Name        string `json:"name"`
	FrameWidth  int    `json:"frameWidth"`
	FrameHeight int    `json:"frameHeight"`
	OriginX     int    `json:"originX"`
	OriginY     int    `json:"originY"`
	Delays      []int  `json:"delays"`
}

// Save writes dst as a directory holding, per animation, a PNG strip of its
// frames and a JSON file with frame size and delays.
func (ms *MultiSprite) Save(dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}
	for _, a := range ms.Animations {
		if len(a.Frames) == 0 {
			continue
		}
		base := strings.ReplaceAll(a.Name, ":", "_")

		if err := hmg.SavePNG(filepath.Join(dst, base+".png"), a.Strip()); err != nil {
			return fmt.Errorf("animation %s: %w", a.Name, err)
		}

		meta := animationMeta{
			Name:        a.Name,
			FrameWidth:  a.Bounds.W,
			FrameHeight: a.Bounds.H,
			OriginX:     a.Bounds.X,
			OriginY:     a.Bounds.Y,
			Delays:      a.Delays,
		}
		if err := writeJSON(filepath.Join(dst, base+".json"), meta); err != nil {
			return err
		}
	}
	return nil
}
