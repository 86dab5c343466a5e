// Package input collects window events into a per-frame queue independent
// of the windowing library.
package input

// EventType classifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventResize
	EventKeyDown
	EventKeyUp
)

// Key identifies the keys the viewer reacts to. Everything else maps to
// KeyUnknown.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeySpace
	Key1
	Key2
	Key3
	Key4
	KeyPlus
	KeyMinus
	KeyW
	KeyF12
)

var keyNames = map[Key]string{
	KeyUnknown: "unknown",
	KeyEscape:  "escape",
	KeySpace:   "space",
	Key1:       "1",
	Key2:       "2",
	Key3:       "3",
	Key4:       "4",
	KeyPlus:    "plus",
	KeyMinus:   "minus",
	KeyW:       "w",
	KeyF12:     "f12",
}

func (k Key) String() string {
	if s, ok := keyNames[k]; ok {
		return s
	}
	return "unknown"
}

// Digit returns the 0-based index of a number key, or -1.
func (k Key) Digit() int {
	if k >= Key1 && k <= Key4 {
		return int(k - Key1)
	}
	return -1
}

// Event is one translated window event.
type Event struct {
	Type   EventType
	Key    Key
	Width  int
	Height int
}

// Input holds the events of the current frame.
type Input struct {
	events []Event
	quit   bool
}

// New creates an empty queue.
func New() *Input {
	return &Input{events: make([]Event, 0, 16)}
}

// Begin drops the previous frame's events. The quit flag is sticky.
func (i *Input) Begin() {
	i.events = i.events[:0]
}

// Push appends an event.
func (i *Input) Push(e Event) {
	if e.Type == EventQuit {
		i.quit = true
	}
	i.events = append(i.events, e)
}

// Events returns the events pushed since Begin.
func (i *Input) Events() []Event {
	return i.events
}

// QuitRequested reports whether a quit event was ever pushed.
func (i *Input) QuitRequested() bool {
	return i.quit
}

// Resized returns the last resize of this frame.
func (i *Input) Resized() (int, int, bool) {
	for j := len(i.events) - 1; j >= 0; j-- {
		if e := i.events[j]; e.Type == EventResize {
			return e.Width, e.Height, true
		}
	}
	return 0, 0, false
}
