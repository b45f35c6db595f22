package endpoint

import (
	"reflect"

	"github.com/broady/endpoint/internal/meta"
)

// MethodInfo describes one callable method of an endpoint.
type MethodInfo = meta.MethodMetadata

// Reflection is the metadata produced by ReflectMethods. Endpoints are free
// to use any other structured value as their reflection; this is the
// shape the framework generates.
type Reflection struct {
	Methods []MethodInfo `json:"methods"`
}

// ReflectMethods describes the exported methods of impl.
//
// Methods are listed in name order with their parameter and result types.
// A leading context.Context parameter and a trailing error result are left
// out. Pass a pointer to pick up pointer-receiver methods.
//
//	type Calculator struct{}
//	func (c *Calculator) Add(ctx context.Context, a, b int) (int, error)
//
//	endpoint.ReflectMethods(&Calculator{})
//	// &Reflection{Methods: []MethodInfo{{Name: "Add", Params: []string{"int", "int"}, Returns: []string{"int"}}}}
func ReflectMethods(impl any) *Reflection {
	return &Reflection{Methods: meta.Methods(reflect.TypeOf(impl))}
}

// MethodNames returns the method names in order.
func (r *Reflection) MethodNames() []string {
	names := make([]string, len(r.Methods))
	for i, m := range r.Methods {
		names[i] = m.Name
	}
	return names
}

// Lookup returns the method called name.
func (r *Reflection) Lookup(name string) (MethodInfo, bool) {
	for _, m := range r.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return MethodInfo{}, false
}
