package ui

import "sync"

// Recorder captures notifications and navigations. Used by tests and
// the demo binary to observe flow behavior.
type Recorder struct {
	mu            sync.Mutex
	notifications []Notification
	routes        []Route
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
}

func (r *Recorder) NavigateTo(route Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

// Notifications returns a copy of everything notified so far.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.notifications...)
}

// Routes returns a copy of every navigation so far.
func (r *Recorder) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Route(nil), r.routes...)
}

// LastRoute returns the most recent navigation, or "" when none.
func (r *Recorder) LastRoute() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}

// HasNotification reports whether a notification with the given title
// was recorded.
func (r *Recorder) HasNotification(title string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.Title == title {
			return true
		}
	}
	return false
}
