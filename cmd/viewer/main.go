// Command viewer plays a scene in real time and draws the track and vehicles
// from above.
//
// Keys: space pauses, R restarts the scene, up/down change playback speed.
package main

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cxd309/coaster-engine/internal/engine"
	"github.com/cxd309/coaster-engine/internal/graph"
	"github.com/cxd309/coaster-engine/internal/log"
	"github.com/cxd309/coaster-engine/internal/vehicle"
)

const (
	WindowWidth  = 1200
	WindowHeight = 800

	curveSamples    = 32
	viewScaleMargin = 0.9
	headingLength   = 18
)

var (
	ColorTrack    = color.RGBA{160, 160, 160, 255}
	ColorBroken   = color.RGBA{255, 80, 80, 255}
	ColorVehicle  = color.RGBA{255, 0, 0, 255}
	ColorStopped  = color.RGBA{255, 160, 0, 255}
	ColorHeading  = color.RGBA{255, 255, 0, 255}
	ColorHUDPanel = color.RGBA{0, 0, 0, 180}
)

type Viewer struct {
	input  engine.SimulationInput
	engine *engine.Engine
	tracks [][]mgl64.Vec3 // sampled polyline per segment
	broken []bool

	paused bool
	speed  float64

	viewScale   float32
	viewOffsetX float32
	viewOffsetY float32
}

func NewViewer(input engine.SimulationInput) (*Viewer, error) {
	v := &Viewer{input: input, speed: 1}
	if err := v.reset(); err != nil {
		return nil, err
	}

	g := v.engine.Graph()
	for _, h := range g.Handles() {
		seg, _ := g.Segment(h)
		line := make([]mgl64.Vec3, curveSamples+1)
		for i := range line {
			line[i] = seg.Curve.Position(float64(i) / curveSamples)
		}
		v.tracks = append(v.tracks, line)
		v.broken = append(v.broken, seg.Links.Next == graph.Unresolved || seg.Links.Previous == graph.Unresolved)
	}
	v.fitView()
	return v, nil
}

func (v *Viewer) reset() error {
	e, err := engine.New(v.input)
	if err != nil {
		return err
	}
	v.engine = e
	return nil
}

// fitView scales the XZ bounding box of the track into the window.
func (v *Viewer) fitView() {
	minX, minZ := math.Inf(1), math.Inf(1)
	maxX, maxZ := math.Inf(-1), math.Inf(-1)
	for _, line := range v.tracks {
		for _, p := range line {
			minX, maxX = math.Min(minX, p.X()), math.Max(maxX, p.X())
			minZ, maxZ = math.Min(minZ, p.Z()), math.Max(maxZ, p.Z())
		}
	}
	if math.IsInf(minX, 0) {
		v.viewScale = 1
		return
	}

	w, h := math.Max(maxX-minX, 1), math.Max(maxZ-minZ, 1)
	scale := math.Min(WindowWidth/w, WindowHeight/h) * viewScaleMargin
	v.viewScale = float32(scale)
	v.viewOffsetX = float32((WindowWidth-w*scale)/2 - minX*scale)
	v.viewOffsetY = float32((WindowHeight-h*scale)/2 - minZ*scale)
}

func (v *Viewer) toScreen(p mgl64.Vec3) (float32, float32) {
	return float32(p.X())*v.viewScale + v.viewOffsetX, float32(p.Z())*v.viewScale + v.viewOffsetY
}

func (v *Viewer) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		v.paused = !v.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		if err := v.reset(); err != nil {
			return err
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		v.speed = math.Min(v.speed*2, 16)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		v.speed = math.Max(v.speed/2, 1.0/16)
	}

	if v.paused {
		return nil
	}
	_, err := v.engine.Step(v.speed / float64(ebiten.TPS()))
	return err
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	for i, line := range v.tracks {
		col := ColorTrack
		if v.broken[i] {
			col = ColorBroken
		}
		for j := 0; j < len(line)-1; j++ {
			p1x, p1y := v.toScreen(line[j])
			p2x, p2y := v.toScreen(line[j+1])
			vector.StrokeLine(screen, p1x, p1y, p2x, p2y, 2, col, true)
		}
	}

	for _, sv := range v.engine.Vehicles() {
		x, y := v.toScreen(sv.Pose.Position)
		col := ColorVehicle
		if sv.Outcome != vehicle.OutcomeNormal {
			col = ColorStopped
		}
		vector.FillCircle(screen, x, y, 6, col, true)

		// facing projected onto the ground plane
		dir := mgl64.Vec2{sv.Pose.Facing.X(), sv.Pose.Facing.Z()}
		if dir.Len() > 1e-9 {
			dir = dir.Normalize().Mul(headingLength)
			vector.StrokeLine(screen, x, y, x+float32(dir.X()), y+float32(dir.Y()), 2, ColorHeading, true)
		}
	}

	v.drawHUD(screen)
}

func (v *Viewer) drawHUD(screen *ebiten.Image) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "t=%.2fs  x%g", v.engine.Time(), v.speed)
	if v.paused {
		sb.WriteString("  PAUSED")
	}
	sb.WriteByte('\n')
	for _, l := range v.engine.Snapshot().VehicleLogs {
		fmt.Fprintf(&sb, "%s %s %.1fm %.2fm/s %s\n", l.VehicleID, l.Segment, l.Distance, l.Speed, l.Outcome)
	}

	lines := strings.Count(sb.String(), "\n")
	vector.FillRect(screen, 0, 0, 320, float32(16*lines+8), ColorHUDPanel, true)
	ebitenutil.DebugPrint(screen, sb.String())
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return WindowWidth, WindowHeight
}

func main() {
	logLevel := pflag.String("log-level", "info", "controls the log level (debug, info, warn, error)")
	pflag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: viewer [flags] scene.{json,yaml}")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	if err := log.Init(*logLevel, "text"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := log.Default().Named("viewer")

	input, err := engine.LoadInput(pflag.Arg(0))
	if err != nil {
		logger.Fatal("could not load scene", zap.Error(err))
	}
	viewer, err := NewViewer(input)
	if err != nil {
		logger.Fatal("could not set up scene", zap.Error(err))
	}

	ebiten.SetWindowSize(WindowWidth, WindowHeight)
	ebiten.SetWindowTitle("Coaster: " + input.Meta.SimulationID)
	if err := ebiten.RunGame(viewer); err != nil {
		logger.Fatal("viewer stopped", zap.Error(err))
	}
}
