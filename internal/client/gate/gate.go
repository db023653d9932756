// Package gate decides whether a view may be shown for the current session
// state.
package gate

import (
	"fmt"

	"github.com/dmitrijs2005/quotekeeper/internal/client/models"
)

const (
	RouteHome      = "/"
	RouteAuth      = "/auth"
	RouteQuotes    = "/quotes"
	RouteInterests = "/interests"
	RouteAccount   = "/account"
)

// Access is who may see a route.
type Access int

const (
	Public Access = iota
	GuestOnly
	SignedInOnly
)

var routes = map[string]Access{
	RouteHome:      Public,
	RouteAuth:      GuestOnly,
	RouteQuotes:    SignedInOnly,
	RouteInterests: SignedInOnly,
	RouteAccount:   SignedInOnly,
}

// Routes returns every known route and its access rule.
func Routes() map[string]Access {
	out := make(map[string]Access, len(routes))
	for k, v := range routes {
		out[k] = v
	}
	return out
}

type Action int

const (
	Render Action = iota
	Redirect
	Wait
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case Wait:
		return "wait"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Decision is the outcome for one route. Target is set for Redirect.
type Decision struct {
	Action Action
	Target string
}

// Decide returns what to do with route in state. Nothing is decided while
// the session is loading. Unknown routes are treated as signed-in only.
func Decide(state models.SessionState, route string) Decision {
	if state.Loading {
		return Decision{Action: Wait}
	}

	access, ok := routes[route]
	if !ok {
		access = SignedInOnly
	}

	switch {
	case access == GuestOnly && state.SignedIn():
		return Decision{Action: Redirect, Target: RouteHome}
	case access == SignedInOnly && !state.SignedIn():
		return Decision{Action: Redirect, Target: RouteAuth}
	}
	return Decision{Action: Render}
}
