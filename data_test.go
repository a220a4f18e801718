package rustache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueOf_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"string", "hello", Static("hello")},
		{"empty string", "", Static("")},
		{"bool true", true, Bool(true)},
		{"bool false", false, Bool(false)},
		{"int", 42, Static("42")},
		{"negative int", -7, Static("-7")},
		{"int8", int8(-8), Static("-8")},
		{"int16", int16(16), Static("16")},
		{"int32", int32(32), Static("32")},
		{"int64", int64(64), Static("64")},
		{"uint", uint(42), Static("42")},
		{"uint8", uint8(8), Static("8")},
		{"uint16", uint16(16), Static("16")},
		{"uint32", uint32(32), Static("32")},
		{"uint64", uint64(64), Static("64")},
		{"float32", float32(3.5), Static("3.5")},
		{"float64", 0.25, Static("0.25")},
		{"whole float", 2.0, Static("2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValueOf(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueOf_PassesValuesThrough(t *testing.T) {
	scope := NewScope().Set("a", Static("1"))
	seq := Sequence{Static("x")}

	for _, v := range []Value{Static("s"), Bool(true), seq, scope} {
		got, err := ValueOf(v)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	got, err := ValueOf(Lambda(func(string) string { return "out" }))
	require.NoError(t, err)
	fn, ok := got.(Lambda)
	require.True(t, ok)
	assert.Equal(t, "out", fn(""))
}

func TestValueOf_Func(t *testing.T) {
	got, err := ValueOf(func(s string) string { return s + s })
	require.NoError(t, err)
	fn, ok := got.(Lambda)
	require.True(t, ok)
	assert.Equal(t, "abab", fn("ab"))
}

func TestValueOf_Sequences(t *testing.T) {
	got, err := ValueOf([]any{"a", 1, true})
	require.NoError(t, err)
	assert.Equal(t, Sequence{Static("a"), Static("1"), Bool(true)}, got)

	got, err = ValueOf([]string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, Sequence{Static("x"), Static("y")}, got)

	got, err = ValueOf([]any{[]any{"nested"}})
	require.NoError(t, err)
	assert.Equal(t, Sequence{Sequence{Static("nested")}}, got)

	_, err = ValueOf([]any{"ok", nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sequence element 1")
}

func TestValueOf_Maps(t *testing.T) {
	got, err := ValueOf(map[string]any{
		"name":  "Amy",
		"count": 2,
		"skip":  nil,
	})
	require.NoError(t, err)

	scope, ok := got.(*Scope)
	require.True(t, ok)
	assert.Equal(t, []string{"count", "name"}, scope.Names())

	v, _ := scope.Get("name")
	assert.Equal(t, Static("Amy"), v)
	_, ok = scope.Get("skip")
	assert.False(t, ok, "nil map entries are skipped")
}

func TestValueOf_InterfaceKeyedMap(t *testing.T) {
	got, err := ValueOf(map[any]any{
		1:      "one",
		"name": "Amy",
	})
	require.NoError(t, err)

	scope, ok := got.(*Scope)
	require.True(t, ok)
	assert.Equal(t, []string{"1", "name"}, scope.Names())
}

func TestValueOf_Errors(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		message string
	}{
		{"nil", nil, "cannot convert nil"},
		{"struct", struct{}{}, "unsupported type struct {}"},
		{"channel", make(chan int), "unsupported type chan int"},
		{"wrong func shape", func() {}, "unsupported type func()"},
		{"nested map error", map[string]any{"k": struct{}{}}, `key "k"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValueOf(tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestScopeOf_SortsKeys(t *testing.T) {
	scope, err := ScopeOf(map[string]any{"c": 3, "a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, scope.Names())
}
