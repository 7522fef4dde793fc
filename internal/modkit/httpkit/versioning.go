package httpkit

import (
	"net/http"
	"strings"
)

// APIVersion is the version segment every module mounts under
const APIVersion = "v1"

// MountAPI scopes mount under /api/{version} with mw applied to the whole scope
//
//	httpkit.MountAPIV1(r, httpkit.CommonStack(httpkit.StackOptions{}), func(api httpkit.Router) {
//		card.MountRoutes(api) // GET /api/v1/nfc/uid ...
//	})
func MountAPI(r Router, version string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountUnder(r, "/api/"+strings.Trim(version, "/"), mw, mount)
}

// MountAPIV1 is MountAPI for APIVersion
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountAPI(r, APIVersion, mw, mount)
}
