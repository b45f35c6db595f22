// Package meta extracts method metadata from Go types.
// It backs endpoint.ReflectMethods and is not meant for direct use.
package meta

import (
	"context"
	"reflect"
	"sort"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// MethodMetadata describes one exported method of an endpoint implementation.
type MethodMetadata struct {
	Name    string   `json:"name"`
	Params  []string `json:"params"`
	Returns []string `json:"returns"`
}

// Methods returns metadata for the exported methods of t, sorted by name.
// The receiver is not listed as a parameter. A leading context.Context
// parameter and a trailing error result are omitted: they are transport
// plumbing, not part of the callable surface.
func Methods(t reflect.Type) []MethodMetadata {
	if t == nil {
		return nil
	}
	methods := make([]MethodMetadata, 0, t.NumMethod())
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if !m.IsExported() {
			continue
		}
		methods = append(methods, describe(m.Name, m.Type, t.Kind() != reflect.Interface))
	}
	sort.Slice(methods, func(i, j int) bool {
		return methods[i].Name < methods[j].Name
	})
	return methods
}

func describe(name string, ft reflect.Type, hasReceiver bool) MethodMetadata {
	in := 0
	if hasReceiver {
		in = 1
	}
	if in < ft.NumIn() && ft.In(in) == contextType {
		in++
	}
	params := make([]string, 0, ft.NumIn()-in)
	for ; in < ft.NumIn(); in++ {
		params = append(params, ft.In(in).String())
	}

	out := ft.NumOut()
	if out > 0 && ft.Out(out-1) == errorType {
		out--
	}
	returns := make([]string, 0, out)
	for i := 0; i < out; i++ {
		returns = append(returns, ft.Out(i).String())
	}

	return MethodMetadata{
		Name:    name,
		Params:  params,
		Returns: returns,
	}
}
