package module

import (
	"fmt"
	"reflect"
)

// PortSet is whatever a module returns from Ports: a single port or a struct bundle of them
type PortSet = any

// PortsOf finds the first value in m's ports that implements T
// the bundle itself is tried first, then its exported non-nil fields; pointers to structs are followed
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}

	rv := reflect.Indirect(reflect.ValueOf(p))
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		f := rv.Field(i)
		if !f.CanInterface() || isNilField(f) {
			continue
		}
		if v, ok := f.Interface().(T); ok {
			return v, true
		}
	}
	return zero, false
}

// MustPortsOf is PortsOf for wiring code, it panics naming the module and the port type
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic(fmt.Sprintf("module %s: requested port not found: %s", m.Name(), reflect.TypeFor[T]()))
	}
	return v
}

func isNilField(f reflect.Value) bool {
	switch f.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		return f.IsNil()
	}
	return false
}
