// Package endpoint describes RPC endpoints: named, path-addressed containers
// of remotely callable methods together with reflection metadata that
// tells callers which methods exist.
//
// An Endpoint is immutable. Concrete endpoint implementations construct one
// at registration time and hand it to a Router, which matches requests by
// exact comparison against the normalized path:
//
//	ep, err := endpoint.New("calc", "/calc", endpoint.ReflectMethods(&Calculator{}))
//	if err != nil {
//	    return err
//	}
//	router := endpoint.NewRouter()
//	if err := router.Register(ep); err != nil {
//	    return err
//	}
//	http.ListenAndServe(":8080", router.Handler())
package endpoint

import (
	"fmt"
	"reflect"
)

// Endpoint is an immutable RPC endpoint descriptor.
//
// All fields are set once by New and only read afterwards, so an Endpoint
// may be shared between goroutines without locking.
type Endpoint struct {
	name       string
	path       string
	reflection any
}

// New creates a descriptor named name, routed at the normalized form of
// rawPath (see NormalizePath), exposing reflection as its metadata.
//
// reflection must be a structured value: a map, struct, slice, array, or a
// pointer to one of those. It is stored by reference, not copied. A nil or
// scalar reflection fails with an error matching ErrTypeMismatch.
func New(name, rawPath string, reflection any) (*Endpoint, error) {
	if err := checkStructured(reflection); err != nil {
		return nil, err
	}
	return &Endpoint{
		name:       name,
		path:       NormalizePath(rawPath),
		reflection: reflection,
	}, nil
}

// NewFromAny is New for values of unknown type, such as those decoded from
// configuration files. name and rawPath must have a string kind.
func NewFromAny(name, rawPath, reflection any) (*Endpoint, error) {
	n, ok := asString(name)
	if !ok {
		return nil, Errorf(CodeTypeMismatch, "name must be a string, got %s", typeName(name)).
			WithDetail("argument", "name")
	}
	p, ok := asString(rawPath)
	if !ok {
		return nil, Errorf(CodeTypeMismatch, "path must be a string, got %s", typeName(rawPath)).
			WithDetail("argument", "path")
	}
	return New(n, p, reflection)
}

// MustNew is like New but panics if the descriptor cannot be created.
// It is intended for endpoints declared in code at startup.
func MustNew(name, rawPath string, reflection any) *Endpoint {
	ep, err := New(name, rawPath, reflection)
	if err != nil {
		panic(fmt.Sprintf("endpoint: %v", err))
	}
	return ep
}

// Name returns the name the endpoint was created with.
func (e *Endpoint) Name() string {
	return e.name
}

// Path returns the normalized routing path. It always begins and ends
// with "/".
func (e *Endpoint) Path() string {
	return e.path
}

// Reflection returns the metadata passed to New. The value is the same
// reference, not a copy: mutations made by its producer are visible here.
func (e *Endpoint) Reflection() any {
	return e.reflection
}

func (e *Endpoint) String() string {
	return e.name + " " + e.path
}

// checkStructured rejects values that are not structured metadata.
func checkStructured(v any) error {
	if v == nil {
		return NewError(CodeTypeMismatch, "reflection must be a structured value, got nil").
			WithDetail("argument", "reflection")
	}
	if !isStructured(reflect.TypeOf(v)) {
		return Errorf(CodeTypeMismatch, "reflection must be a structured value, got %s", typeName(v)).
			WithDetail("argument", "reflection")
	}
	return nil
}

func isStructured(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		return true
	case reflect.Pointer:
		return isStructured(t.Elem())
	default:
		return false
	}
}

func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
