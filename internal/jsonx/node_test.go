package jsonx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) Node {
	t.Helper()
	n, err := Parse([]byte(s))
	require.NoError(t, err)
	return n
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte(`{"a":`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{} {}`))
	assert.Error(t, err)
}

func TestFieldAccess(t *testing.T) {
	n := mustParse(t, `{
		"s": "x",
		"num": 8.5,
		"int": 42,
		"neg": "-3",
		"null": null,
		"obj": {"inner": {"v": "deep"}},
		"arr": [1, "2", {"k": "v"}],
		"flag": true
	}`)

	cases := []struct {
		Name     string
		Node     Node
		Expected string
	}{
		{"plain string", n.Get("s"), "x"},
		{"float renders verbatim", n.Get("num"), "8.5"},
		{"int renders verbatim", n.Get("int"), "42"},
		{"bool renders", n.Get("flag"), "true"},
		{"missing key", n.Get("nope"), "dflt"},
		{"null", n.Get("null"), "dflt"},
		{"object is not a string", n.Get("obj"), "dflt"},
		{"nested path", n.Path("obj", "inner", "v"), "deep"},
		{"path through scalar", n.Path("s", "inner"), "dflt"},
		{"index", n.Get("arr").Index(1), "2"},
		{"index out of range", n.Get("arr").Index(9), "dflt"},
	}
	for _, c := range cases {
		assert.Equal(t, c.Expected, c.Node.Str("dflt"), c.Name)
	}

	assert.Equal(t, 42, n.Get("int").IntOr(0))
	assert.Equal(t, -3, n.Get("neg").IntOr(0))
	assert.Equal(t, 7, n.Get("num").IntOr(7), "fractional numbers are not ints")
	assert.Equal(t, 7, n.Get("flag").IntOr(7), "booleans are not ints")
	assert.Nil(t, n.Get("null").IntPtr())
	require.NotNil(t, n.Get("neg").IntPtr())
	assert.Equal(t, -3, *n.Get("neg").IntPtr())

	assert.True(t, n.Get("flag").Bool())
	assert.True(t, n.Get("int").Bool())
	assert.False(t, n.Get("missing").Bool())

	assert.True(t, n.Get("obj").IsObject())
	assert.True(t, n.Get("arr").IsArray())
	assert.Equal(t, 3, n.Get("arr").Len())
	assert.False(t, n.Get("null").Exists())
	assert.False(t, Node{}.Get("x").Exists())
}

func TestMapObjects_DropsMalformed(t *testing.T) {
	arr := mustParse(t, `[{"id":"1"}, 5, null, "str", {"id":"2"}, [], {"noid":true}]`)

	got := MapObjects(arr, func(o Node) (string, bool) {
		v, ok := Required(o, "id")
		if !ok {
			return "", false
		}
		return v[0], true
	})
	assert.Equal(t, []string{"1", "2"}, got)
}

func TestMapObjects_NonArrayYieldsEmpty(t *testing.T) {
	got := MapObjects(mustParse(t, `{"a":1}`), func(o Node) (int, bool) { return 1, true })
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = MapObjects(Node{}, func(o Node) (int, bool) { return 1, true })
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtractionIsIdempotent(t *testing.T) {
	raw := []byte(`{"title":"T","score":9.1,"list":[{"a":"1"},{"a":2}]}`)
	extract := func() []string {
		n, err := Parse(raw)
		require.NoError(t, err)
		return MapObjects(n.Get("list"), func(o Node) (string, bool) {
			return n.Get("title").Str("") + o.Get("a").Str("") + n.Get("score").Str(""), true
		})
	}
	assert.Equal(t, extract(), extract())
}
