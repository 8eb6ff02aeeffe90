// Command nescaster runs the emulation core in a desktop window:
// video and input through Ebitengine, audio through oto.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	nescaster "github.com/Virtual-Viking/NesCaster"
	"github.com/Virtual-Viking/NesCaster/internal/version"
)

// Keyboard layout for pad 0.
var keyBindings = []struct {
	key    ebiten.Key
	button nescaster.Button
}{
	{ebiten.KeyZ, nescaster.ButtonA},
	{ebiten.KeyX, nescaster.ButtonB},
	{ebiten.KeyShiftRight, nescaster.ButtonSelect},
	{ebiten.KeyEnter, nescaster.ButtonStart},
	{ebiten.KeyArrowUp, nescaster.ButtonUp},
	{ebiten.KeyArrowDown, nescaster.ButtonDown},
	{ebiten.KeyArrowLeft, nescaster.ButtonLeft},
	{ebiten.KeyArrowRight, nescaster.ButtonRight},
}

type game struct {
	console *nescaster.Console
	audio   *audioOutput
	frame   *ebiten.Image
	samples []int16
	showFPS bool
}

func newGame(console *nescaster.Console, audio *audioOutput) *game {
	return &game{
		console: console,
		audio:   audio,
		frame:   ebiten.NewImage(nescaster.FrameWidth, nescaster.FrameHeight),
		samples: make([]int16, 8192),
	}
}

func (g *game) Update() error {
	g.handleHotkeys()

	var mask uint8
	for _, b := range keyBindings {
		if ebiten.IsKeyPressed(b.key) {
			mask |= uint8(b.button)
		}
	}
	g.console.SetInput(0, mask)

	g.console.RunFrame()

	if g.audio != nil {
		for {
			n := g.console.ReadAudioSamples(g.samples)
			if n == 0 {
				break
			}
			g.audio.queue(g.samples[:n])
		}
	}
	return nil
}

func (g *game) handleHotkeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		g.console.QuickSave()
	case inpututil.IsKeyJustPressed(ebiten.KeyF9):
		g.console.QuickLoad()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.console.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		g.console.Rewind()
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		if g.console.State() == nescaster.StatePaused {
			g.console.Resume()
		} else {
			g.console.Pause()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		g.showFPS = !g.showFPS
	}

	// 1-9 and 0 map to slots 1-9 and 0; hold shift to load.
	for slot := 0; slot <= 9; slot++ {
		key := ebiten.KeyDigit0 + ebiten.Key(slot)
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		if ebiten.IsKeyPressed(ebiten.KeyShiftLeft) {
			g.console.LoadState(slot)
		} else {
			g.console.SaveState(slot)
		}
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	g.frame.WritePixels(g.console.FrameBuffer())

	visible := g.console.VisibleRect()
	screen.DrawImage(g.frame.SubImage(visible).(*ebiten.Image), nil)

	if g.showFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("%.1f fps", g.console.FPS()))
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	visible := g.console.VisibleRect()
	return visible.Dx(), visible.Dy()
}

func main() {
	var (
		romPath     = flag.String("rom", "", "path to a .nes file or archive containing one")
		scale       = flag.Int("scale", 3, "window scale factor")
		stateDir    = flag.String("state-dir", "states", "directory for save states and battery saves")
		recordWAV   = flag.String("record-wav", "", "record mixed audio to this WAV file")
		rewindDepth = flag.Int("rewind", 120, "rewind snapshots to retain (0 disables)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: nescaster -rom <file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	console := nescaster.New(nescaster.Options{
		StateDir:    *stateDir,
		RewindDepth: *rewindDepth,
	})
	defer console.Shutdown()

	if result := console.LoadROMFromPath(*romPath); result != nescaster.LoadSuccess {
		log.Fatalf("load %s: %v", *romPath, result)
	}
	// NTSC overscan: the top and bottom eight lines are hidden on a CRT.
	console.SetOverscan(8, 8, 0, 0)
	console.Start()

	if *recordWAV != "" {
		if err := console.StartAudioRecording(*recordWAV); err != nil {
			log.Fatalf("record: %v", err)
		}
	}

	audio, err := newAudioOutput(console.SampleRate())
	if err != nil {
		// Video-only operation is still useful.
		log.Printf("audio disabled: %v", err)
	} else {
		defer audio.close()
	}

	visible := console.VisibleRect()
	ebiten.SetWindowSize(visible.Dx()**scale, visible.Dy()**scale)
	ebiten.SetWindowTitle("NesCaster - " + console.ROMName())
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(newGame(console, audio)); err != nil {
		log.Fatalf("run: %v", err)
	}
}
