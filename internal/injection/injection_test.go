package injection

import (
	"context"
	"log/slog"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/graphproc/internal/components"
	"github.com/vk/graphproc/procedure"
)

type secret struct{ token string }

type withContext struct {
	Log   *slog.Logger `proc:"context"`
	Count *int         `proc:"static"`
	_     int
}

type withUnsafe struct {
	Log    *slog.Logger `proc:"context"`
	Secret *secret      `proc:"context"`
}

type staticContext struct {
	Log *slog.Logger `proc:"context,static"`
}

type unexportedContext struct {
	log *slog.Logger `proc:"context"`
}

type unknownComponent struct {
	Name string `proc:"context"`
}

type unmanaged struct {
	Cache map[string]string
}

func newRegistry() *components.Registry {
	r := components.New()
	logger := slog.New(slog.DiscardHandler)
	components.Provide(r, func(*procedure.Context) (*slog.Logger, error) { return logger, nil })
	components.ProvideUnsafe(r, func(*procedure.Context) (*secret, error) { return &secret{token: "t"}, nil })
	return r
}

func resolve(t *testing.T, proto any) (*Injection, error) {
	t.Helper()
	rv := reflect.ValueOf(proto)
	class := procedure.Class{Type: rv.Type().Elem()}
	return NewResolver(newRegistry()).Setters(class, rv)
}

func TestSetters_AppliesContextFields(t *testing.T) {
	in, err := resolve(t, &withContext{})
	require.NoError(t, err)
	require.True(t, in.Safe())
	require.Len(t, in.Setters(), 1)

	inst := &withContext{}
	require.NoError(t, in.Apply(procedure.NewContext(context.Background(), nil, nil), reflect.ValueOf(inst)))
	require.NotNil(t, inst.Log)
	require.Nil(t, inst.Count)
}

func TestSetters_UnsafeComponentMarksInjection(t *testing.T) {
	in, err := resolve(t, &withUnsafe{})
	require.NoError(t, err)
	require.False(t, in.Safe())
	require.Len(t, in.Setters(), 2)
}

func TestSetters_Errors(t *testing.T) {
	tests := []struct {
		name  string
		proto any
		want  string
	}{
		{
			name:  "static context field",
			proto: &staticContext{},
			want:  "The field `Log` in the class named `staticContext` is annotated as a context field, but it is static.",
		},
		{
			name:  "unexported context field",
			proto: &unexportedContext{},
			want:  "Field `log` on `unexportedContext` is annotated as a context field but is not exported.",
		},
		{
			name:  "unknown component",
			proto: &unknownComponent{},
			want:  "Unable to set up injection for `unknownComponent`, the field `Name` has type `string` which is not a known injectable component.",
		},
		{
			name:  "unmanaged state",
			proto: &unmanaged{},
			want:  "Field `Cache` on `unmanaged` is not annotated as a context field and is not static.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := resolve(t, tc.proto)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestSetters_InitializedFieldIsAllowed(t *testing.T) {
	_, err := resolve(t, &unmanaged{Cache: map[string]string{}})
	require.NoError(t, err)
}
