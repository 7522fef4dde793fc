package httpkit

import "net/http"

// MountUnder opens prefix on r, installs mw on the new subrouter, then hands it to mount
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) != 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}
