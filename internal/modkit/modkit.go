package modkit

import "readnfc/internal/modkit/module"

// Module is the surface api.Mount needs from a feature module
type Module = module.Module

// PortSet is what a module returns from Ports
type PortSet = module.PortSet

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module
