package meta

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(key string, value []byte) error
}

type kv struct{}

func (kv) Close() error { return nil }

func TestMethods_Interface(t *testing.T) {
	got := Methods(reflect.TypeOf((*store)(nil)).Elem())
	want := []MethodMetadata{
		{Name: "Get", Params: []string{"string"}, Returns: []string{"[]uint8"}},
		{Name: "Put", Params: []string{"string", "[]uint8"}, Returns: []string{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Methods mismatch (-want +got):\n%s", diff)
	}
}

func TestMethods_ErrorOnlyResult(t *testing.T) {
	got := Methods(reflect.TypeOf(kv{}))
	want := []MethodMetadata{
		{Name: "Close", Params: []string{}, Returns: []string{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Methods mismatch (-want +got):\n%s", diff)
	}
}

func TestMethods_Nil(t *testing.T) {
	if got := Methods(nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
