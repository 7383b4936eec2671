// Package navigation moves the user between views.
package navigation

import (
	"fmt"
	"io"
)

// Route names a view.
type Route string

const (
	Login    Route = "login"
	Tasks    Route = "tasks"
	Register Route = "register"
)

// Controller performs navigation. The session and sync packages call it
// after login, registration, logout and guard denial.
type Controller interface {
	GoTo(r Route)
}

// Func adapts a function to a Controller.
type Func func(r Route)

func (f Func) GoTo(r Route) { f(r) }

// Nop discards navigation requests.
var Nop Controller = Func(func(Route) {})

// hints maps each route to the command that shows it.
var hints = map[Route]string{
	Login:    "tasker login <username>",
	Tasks:    "tasker list",
	Register: "tasker register <username>",
}

// Hint is the command-line Controller: a terminal cannot switch pages, so
// it tells the user which command reaches the route.
type Hint struct {
	W     io.Writer
	Quiet bool
}

func (h Hint) GoTo(r Route) {
	if h.Quiet || h.W == nil {
		return
	}
	cmd, ok := hints[r]
	if !ok {
		return
	}
	fmt.Fprintf(h.W, "next: %s\n", cmd)
}

// Recorder remembers every route it was sent to. Used by tests.
type Recorder struct {
	Routes []Route
}

func (r *Recorder) GoTo(route Route) { r.Routes = append(r.Routes, route) }

// Count returns how many times route was visited.
func (r *Recorder) Count(route Route) int {
	n := 0
	for _, v := range r.Routes {
		if v == route {
			n++
		}
	}
	return n
}
