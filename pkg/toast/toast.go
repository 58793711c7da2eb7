package toast

import "sync"

// Level classifies a toast.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Color returns the CSS class the UI renders this level with.
func (l Level) Color() string {
	if l == LevelError {
		return "bg-orange-600"
	}
	return "bg-sky-600"
}

// Toast is one notification.
type Toast struct {
	Level   Level
	Content string
}

// Center holds the current toast and notifies subscribers on change.
type Center struct {
	mu      sync.Mutex
	current Toast
	visible bool
	subs    []func(Toast, bool)
}

// NewCenter returns an empty center.
func NewCenter() *Center {
	return &Center{}
}

// Info shows an informational toast.
func (c *Center) Info(content string) {
	c.show(Toast{Level: LevelInfo, Content: content})
}

// Error shows an error toast.
func (c *Center) Error(content string) {
	c.show(Toast{Level: LevelError, Content: content})
}

// Dismiss hides the current toast.
func (c *Center) Dismiss() {
	c.mu.Lock()
	c.visible = false
	t := c.current
	subs := c.subs
	c.mu.Unlock()

	for _, fn := range subs {
		fn(t, false)
	}
}

// Current returns the active toast, false when none is shown.
func (c *Center) Current() (Toast, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.visible
}

// Subscribe registers a callback invoked on every show and dismiss. The
// bool reports visibility.
func (c *Center) Subscribe(fn func(Toast, bool)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

func (c *Center) show(t Toast) {
	c.mu.Lock()
	c.current = t
	c.visible = true
	subs := c.subs
	c.mu.Unlock()

	for _, fn := range subs {
		fn(t, true)
	}
}
