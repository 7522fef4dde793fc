// Package module holds the contract every modkit module satisfies and the helpers to read its ports
package module

import (
	phttp "readnfc/internal/platform/net/http"
)

// Module is what api.Mount and cmd wiring see of a feature module
// it lives apart from modkit so a module package can import it alongside its own ports type
type Module interface {
	// Name identifies the module in logs and panics
	Name() string
	// MountRoutes registers the module's handlers on r
	MountRoutes(r phttp.Router)
	// Ports returns the module's ports; see PortsOf
	Ports() PortSet
}
