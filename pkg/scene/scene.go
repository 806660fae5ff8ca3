package scene

import (
	"math"

	"github.com/matzehuels/codecity/pkg/color"
	"github.com/matzehuels/codecity/pkg/layout"
	"github.com/matzehuels/codecity/pkg/metrics"
	"github.com/matzehuels/codecity/pkg/tree"
)

// Ground and camera defaults.
const (
	MinGroundSize    = 200.0
	GroundScale      = 2.0
	GroundY          = -0.1
	fallbackExtent   = 100.0
	cameraSpread     = 0.75
	cameraElevation  = 0.6
	cameraTargetRise = 8.0
)

// Vec3 is a point in world space. Y is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Palette supplies the scene's colors and drawing floors.
type Palette struct {
	Heat       color.Gradient
	Foundation color.FoundationShade
	Ground     color.Color

	// MinRenderDimension is the drawn side of a file without lines of code.
	// Such a file keeps its full footprint in the layout and is drawn
	// centered inside it. Zero draws the layout footprint.
	MinRenderDimension float64
}

// DefaultPalette uses the blue-yellow-red heat gradient and gray foundations.
func DefaultPalette() Palette {
	return Palette{
		Heat:       color.DefaultHeatGradient,
		Foundation: color.DefaultFoundationShade,
		Ground:     color.Ground,

		MinRenderDimension: metrics.DefaultMinRenderDimension,
	}
}

// Foundation is a directory slab. Base is the center of its bottom face.
type Foundation struct {
	Seq    int         `json:"seq"`
	Path   string      `json:"path"`
	Name   string      `json:"name"`
	Base   Vec3        `json:"base"`
	Width  float64     `json:"width"`
	Depth  float64     `json:"depth"`
	Height float64     `json:"height"`
	Level  int         `json:"level"`
	LOC    int64       `json:"loc"`
	Count  int64       `json:"count"`
	Color  color.Color `json:"color"`
}

// Building is a file box. Base is the center of its bottom face.
type Building struct {
	Seq    int         `json:"seq"`
	Path   string      `json:"path"`
	Name   string      `json:"name"`
	Base   Vec3        `json:"base"`
	Width  float64     `json:"width"`
	Depth  float64     `json:"depth"`
	Height float64     `json:"height"`
	Level  int         `json:"level"`
	LOC    int64       `json:"loc"`
	Count  int64       `json:"count"`
	Heat   float64     `json:"heat"`
	Color  color.Color `json:"color"`
}

// Top returns the height of the building's roof.
func (b Building) Top() float64 { return b.Base.Y + b.Height }

// Ground is the square plane under the city.
type Ground struct {
	Size  float64     `json:"size"`
	Y     float64     `json:"y"`
	Color color.Color `json:"color"`
}

// CameraHint is a suggested viewpoint.
type CameraHint struct {
	Position Vec3 `json:"position"`
	Target   Vec3 `json:"target"`
}

// Bounds is the extent of the city.
type Bounds struct {
	Width  float64 `json:"width"`
	Depth  float64 `json:"depth"`
	Height float64 `json:"height"`
}

// Scene is the emitted city.
type Scene struct {
	Foundations []Foundation        `json:"foundations"`
	Buildings   []Building          `json:"buildings"`
	Ground      Ground              `json:"ground"`
	Camera      CameraHint          `json:"camera"`
	Bounds      Bounds              `json:"bounds"`
	Diagnostics []layout.Diagnostic `json:"diagnostics,omitempty"`

	pickables []Pickable
	byPath    map[string]int
	heat      metrics.Heat
	index     *Index
}

// Build emits the scene for a laid-out tree. When heat is nil the heat
// recorded on each placement is used.
func Build(res *layout.Result, heat metrics.Heat, palette Palette) *Scene {
	s := &Scene{Diagnostics: res.Diagnostics}
	if res.Root != nil {
		e := emitter{scene: s, heat: heat, palette: palette}
		e.emit(res.Root, Vec3{}, 0)
		s.Bounds.Width, s.Bounds.Depth = res.Root.Width, res.Root.Depth
	}
	s.Ground = groundFor(s.Bounds, palette.Ground)
	s.Camera = cameraFor(s.Bounds)
	s.finish()
	return s
}

type emitter struct {
	scene   *Scene
	heat    metrics.Heat
	palette Palette
	seq     int
}

func (e *emitter) emit(p *layout.Placement, base Vec3, level int) {
	s := e.scene
	loc, count := nodeMetrics(p)
	seq := e.seq
	e.seq++

	if !p.IsDir() {
		h := p.Heat
		if e.heat != nil {
			h = e.heat.Of(p.Path)
		}
		w, d := p.Width, p.Depth
		if p.Node != nil && loc <= 0 && e.palette.MinRenderDimension > 0 {
			w, d = min(w, e.palette.MinRenderDimension), min(d, e.palette.MinRenderDimension)
		}
		b := Building{
			Seq: seq, Path: p.Path, Name: p.Name, Base: base,
			Width: w, Depth: d, Height: p.Height, Level: level,
			LOC: loc, Count: count, Heat: h, Color: e.palette.Heat.At(h),
		}
		s.Buildings = append(s.Buildings, b)
		s.Bounds.Height = math.Max(s.Bounds.Height, b.Top())
		s.pickables = append(s.pickables, Pickable{Kind: tree.KindFile, Node: nodeOf(p), DepthLevel: level})
		return
	}

	s.Foundations = append(s.Foundations, Foundation{
		Seq: seq, Path: p.Path, Name: p.Name, Base: base,
		Width: p.Width, Depth: p.Depth, Height: p.Height, Level: level,
		LOC: loc, Count: count, Color: e.palette.Foundation.At(level),
	})
	s.Bounds.Height = math.Max(s.Bounds.Height, base.Y+p.Height)
	s.pickables = append(s.pickables, Pickable{Kind: tree.KindDirectory, Node: nodeOf(p), DepthLevel: level})

	top := base.Y + p.Height
	for _, c := range p.Children {
		e.emit(c, Vec3{X: base.X + c.OffsetX, Y: top, Z: base.Z + c.OffsetZ}, level+1)
	}
}

func nodeMetrics(p *layout.Placement) (loc, count int64) {
	if p.Node == nil {
		return 0, 0
	}
	return p.Node.LOC, p.Node.Count
}

// nodeOf returns the placement's tree node, or a childless stand-in.
func nodeOf(p *layout.Placement) *tree.Node {
	if p.Node != nil {
		return p.Node
	}
	return &tree.Node{Kind: p.Kind, Name: p.Name, FullPath: p.Path}
}

func groundFor(b Bounds, c color.Color) Ground {
	w, d := b.Width, b.Depth
	if !(w > 0) {
		w = fallbackExtent
	}
	if !(d > 0) {
		d = fallbackExtent
	}
	return Ground{Size: max(w, d, MinGroundSize) * GroundScale, Y: GroundY, Color: c}
}

func cameraFor(b Bounds) CameraHint {
	w, d := b.Width, b.Depth
	if !(w > 0) || !(d > 0) {
		return CameraHint{Position: Vec3{X: 100, Y: 150, Z: 200}}
	}
	return CameraHint{
		Position: Vec3{X: w * cameraSpread, Y: max(w, d) * cameraElevation, Z: d * cameraSpread},
		Target:   Vec3{Y: min(w, d) / cameraTargetRise},
	}
}

// finish derives pickables' lookup tables.
func (s *Scene) finish() {
	s.byPath = make(map[string]int, len(s.pickables))
	for i, p := range s.pickables {
		s.byPath[p.Node.FullPath] = i
	}
	s.heat = make(metrics.Heat, len(s.Buildings))
	for _, b := range s.Buildings {
		s.heat[b.Path] = b.Heat
	}
	s.index = NewIndex(s.pickables)
}

// Pickables returns the hit-test targets in emission order.
func (s *Scene) Pickables() []Pickable { return s.pickables }

// Index returns the depth/kind index over the pickables.
func (s *Scene) Index() *Index { return s.index }

// Pickable returns the target at fullPath.
func (s *Scene) Pickable(fullPath string) (Pickable, bool) {
	i, ok := s.byPath[fullPath]
	if !ok {
		return Pickable{}, false
	}
	return s.pickables[i], true
}

// Tooltip describes the target at fullPath.
func (s *Scene) Tooltip(fullPath string) (Tooltip, bool) {
	p, ok := s.Pickable(fullPath)
	if !ok {
		return Tooltip{}, false
	}
	return Describe(p, s.heat), true
}

// Heat returns the heat of every building keyed by path.
func (s *Scene) Heat() metrics.Heat { return s.heat }
