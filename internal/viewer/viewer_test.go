package viewer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/meshgradient/internal/config"
	"github.com/Faultbox/meshgradient/internal/engine/gpu/gputest"
	"github.com/Faultbox/meshgradient/internal/engine/input"
)

// readerBackend records how far the frame had got when pixels were read.
type readerBackend struct {
	*gputest.Backend
	win         *fakeWindow
	reads       int
	drawsAtRead int
	swapsAtRead int
}

func (b *readerBackend) ReadPixels(width, height int) []byte {
	b.reads++
	b.drawsAtRead = b.Count("DrawElements")
	b.swapsAtRead = b.win.swaps
	return make([]byte, width*height*4)
}

// fakeWindow delivers queued events on successive polls.
type fakeWindow struct {
	gputest.Surface
	queue  [][]input.Event
	polls  int
	swaps  int
	title  string
	closed bool
}

func (w *fakeWindow) SwapBuffers()          { w.swaps++ }
func (w *fakeWindow) SetTitle(title string) { w.title = title }
func (w *fakeWindow) Close()                { w.closed = true }

func (w *fakeWindow) PollEvents(in *input.Input) {
	if w.polls < len(w.queue) {
		for _, e := range w.queue[w.polls] {
			in.Push(e)
		}
	}
	w.polls++
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Gradient.Height = 0
	cfg.Capture.Dir = t.TempDir()
	return cfg
}

func setup(t *testing.T, cfg *config.Config, events ...[]input.Event) (*Viewer, *fakeWindow, *readerBackend) {
	t.Helper()
	win := &fakeWindow{Surface: gputest.Surface{Width: 64, Height: 32}, queue: events}
	b := &readerBackend{Backend: gputest.New(), win: win}
	v, err := newViewer(win, b, cfg)
	if err != nil {
		t.Fatalf("newViewer: %v", err)
	}
	t.Cleanup(v.Close)
	return v, win, b
}

// stepClock advances 1.5ms on every reading so frames land off even
// milliseconds.
func stepClock(v *Viewer) {
	base := time.Unix(0, 0)
	ticks := 0
	v.now = func() time.Time {
		ts := base.Add(time.Duration(ticks) * 1500 * time.Microsecond)
		ticks++
		return ts
	}
}

var quit = []input.Event{{Type: input.EventQuit}}

func keyDown(k input.Key) input.Event {
	return input.Event{Type: input.EventKeyDown, Key: k}
}

func TestKeyBindings(t *testing.T) {
	tests := []struct {
		name  string
		key   input.Key
		check func(t *testing.T, v *Viewer)
	}{
		{"space pauses", input.KeySpace, func(t *testing.T, v *Viewer) {
			if v.Gradient().Playing() {
				t.Error("still playing after space")
			}
		}},
		{"2 toggles first layer", input.Key2, func(t *testing.T, v *Viewer) {
			if got := v.Gradient().ActiveColors(); got != [4]float32{1, 0, 1, 1} {
				t.Errorf("active colors = %v", got)
			}
		}},
		{"4 is out of range for three colors", input.Key4, func(t *testing.T, v *Viewer) {
			if got := v.Gradient().ActiveColors(); got != [4]float32{1, 1, 1, 1} {
				t.Errorf("active colors = %v", got)
			}
		}},
		{"plus raises frequency", input.KeyPlus, func(t *testing.T, v *Viewer) {
			if got := v.Gradient().Frequency(); got[0] <= 0.00014 || got[1] <= 0.00029 {
				t.Errorf("frequency = %v", got)
			}
		}},
		{"minus lowers frequency", input.KeyMinus, func(t *testing.T, v *Viewer) {
			if got := v.Gradient().Frequency(); got[0] >= 0.00014 || got[1] >= 0.00029 {
				t.Errorf("frequency = %v", got)
			}
		}},
		{"w toggles wireframe", input.KeyW, func(t *testing.T, v *Viewer) {
			if !v.Gradient().Wireframe() {
				t.Error("wireframe not enabled")
			}
		}},
		{"escape stops", input.KeyEscape, func(t *testing.T, v *Viewer) {
			if v.running {
				t.Error("still running after escape")
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _, _ := setup(t, testConfig(t), []input.Event{keyDown(tt.key)})
			v.running = true
			if err := v.step(); err != nil {
				t.Fatalf("step: %v", err)
			}
			tt.check(t, v)
		})
	}
}

func TestScreenshotKey(t *testing.T) {
	cfg := testConfig(t)
	v, win, b := setup(t, cfg, []input.Event{keyDown(input.KeyF12)}, quit)
	stepClock(v)
	if err := v.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if b.reads != 1 {
		t.Fatalf("ReadPixels called %d times, want 1", b.reads)
	}
	if b.drawsAtRead != 1 || b.swapsAtRead != 0 {
		t.Errorf("read after %d draws and %d swaps, want after the render and before the swap",
			b.drawsAtRead, b.swapsAtRead)
	}
	if win.swaps != 1 {
		t.Errorf("swaps = %d, want 1", win.swaps)
	}
	files, err := filepath.Glob(filepath.Join(cfg.Capture.Dir, "gradient_*.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("screenshots = %v, want one", files)
	}
	if info, err := os.Stat(files[0]); err != nil || info.Size() == 0 {
		t.Errorf("screenshot %s empty or unreadable: %v", files[0], err)
	}
}

func TestScreenshotWhilePausedRedraws(t *testing.T) {
	v, win, b := setup(t, testConfig(t), []input.Event{keyDown(input.KeySpace), keyDown(input.KeyF12)}, quit)
	stepClock(v)
	if err := v.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if b.reads != 1 || b.drawsAtRead != 1 || b.swapsAtRead != 0 {
		t.Errorf("reads=%d draws=%d swaps=%d at read, want 1 1 0", b.reads, b.drawsAtRead, b.swapsAtRead)
	}
	if win.swaps != 1 {
		t.Errorf("swaps = %d, want 1", win.swaps)
	}
}

func TestTitleShowsPause(t *testing.T) {
	cfg := testConfig(t)
	v, win, _ := setup(t, cfg, []input.Event{keyDown(input.KeySpace)}, []input.Event{keyDown(input.KeySpace)})
	if err := v.step(); err != nil {
		t.Fatal(err)
	}
	if want := cfg.Graphics.Title + " (paused)"; win.title != want {
		t.Errorf("title = %q, want %q", win.title, want)
	}
	if err := v.step(); err != nil {
		t.Fatal(err)
	}
	if win.title != cfg.Graphics.Title {
		t.Errorf("title = %q, want %q", win.title, cfg.Graphics.Title)
	}
}

func TestResizeCoalesced(t *testing.T) {
	v, win, b := setup(t, testConfig(t), []input.Event{
		{Type: input.EventResize, Width: 100, Height: 50},
		{Type: input.EventResize, Width: 120, Height: 60},
	})
	clears := b.Count("Clear")
	if err := v.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if w, h := v.Gradient().Size(); w != 120 || h != 60 {
		t.Errorf("gradient size = %dx%d, want 120x60", w, h)
	}
	if n := b.Count("Clear") - clears; n != 1 {
		t.Errorf("rendered %d times for two resizes, want 1", n)
	}
	if win.swaps != 1 {
		t.Errorf("swaps = %d, want 1", win.swaps)
	}
}

func TestResizeRedraws(t *testing.T) {
	v, win, b := setup(t, testConfig(t), []input.Event{{Type: input.EventResize, Width: 100, Height: 50}})
	clears := b.Count("Clear")
	if err := v.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if w, h := v.Gradient().Size(); w != 100 || h != 50 {
		t.Errorf("gradient size = %dx%d, want 100x50", w, h)
	}
	if b.Count("Clear") != clears+1 {
		t.Errorf("resize rendered %d times, want 1", b.Count("Clear")-clears)
	}
	if win.swaps != 1 {
		t.Errorf("swaps = %d, want 1", win.swaps)
	}
}

func TestZeroResizeIgnored(t *testing.T) {
	v, _, _ := setup(t, testConfig(t), []input.Event{{Type: input.EventResize, Width: 0, Height: 0}})
	if err := v.step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if w, h := v.Gradient().Size(); w != 64 || h != 32 {
		t.Errorf("gradient size = %dx%d, want unchanged 64x32", w, h)
	}
}

func TestRunUntilQuit(t *testing.T) {
	v, win, _ := setup(t, testConfig(t), nil, nil, quit)
	stepClock(v)

	if err := v.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if win.polls != 3 {
		t.Errorf("polls = %d, want 3", win.polls)
	}
	if win.swaps != 2 {
		t.Errorf("swaps = %d, want 2", win.swaps)
	}
	if v.running {
		t.Error("running after quit")
	}
}

func TestCloseReleasesGPU(t *testing.T) {
	win := &fakeWindow{Surface: gputest.Surface{Width: 64, Height: 32}}
	b := &readerBackend{Backend: gputest.New()}
	v, err := newViewer(win, b, testConfig(t))
	if err != nil {
		t.Fatalf("newViewer: %v", err)
	}
	v.Close()
	if n := b.Count("DeleteProgram"); n != 1 {
		t.Errorf("DeleteProgram = %d, want 1", n)
	}
	if n := b.Count("DeleteBuffer"); n != 4 {
		t.Errorf("DeleteBuffer = %d, want 4", n)
	}
}
