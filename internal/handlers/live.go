package handlers

import (
	"net/http"

	"pagecraft/internal/live"
)

// Live upgrades to a websocket that streams the project's change events.
func (a *API) Live(w http.ResponseWriter, r *http.Request) {
	p := a.loadProject(w, r)
	if p == nil {
		return
	}
	live.Serve(w, r, a.hub, p.ID.String(), p.Version, a.liveOrigins)
}
