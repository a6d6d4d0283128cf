package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalPrimitives(t *testing.T) {
	tests := []struct {
		name string
		in   Value
		want string
	}{
		{"null", Null{}, `null`},
		{"string", String("Ann"), `"Ann"`},
		{"negative int", Int(-7), `-7`},
		{"true", Bool(true), `true`},
		{"false", Bool(false), `false`},
		{"empty array", Array{}, `[]`},
		{"empty object", Object{}, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	obj := Object{
		"name": String("Ann"),
		"age":  Int(41),
		"address": Object{
			"zip":  String("12345"),
			"city": String("Oslo"),
		},
	}

	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"address":{"city":"Oslo","zip":"12345"},"age":41,"name":"Ann"}`, string(got))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	got, err := MarshalCanonical(String("<a & b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a & b>"`, string(got))
}

func TestMarshalCanonicalEscapes(t *testing.T) {
	got, err := MarshalCanonical(String("q\"b\\n\nt\tc\x01"))
	require.NoError(t, err)
	assert.Equal(t, `"q\"b\\n\nt\tc\u0001"`, string(got))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	got, err := MarshalCanonical(String("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(got))
}

func TestMarshalCanonicalPreservesDecomposedStrings(t *testing.T) {
	// "e" followed by a combining acute accent, not U+00E9.
	obj := Object{"name": String("Jose\u0301")}

	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"Jose\u0301\"}", string(got))

	back, err := ParseObject(got)
	require.NoError(t, err)
	assert.True(t, Equal(obj, back))
}

func TestMarshalCanonicalRejectsNFCKeyCollision(t *testing.T) {
	obj := Object{
		"e\u0301": Int(1),
		"\u00e9":  Int(2),
	}

	_, err := MarshalCanonical(obj)
	require.ErrorIs(t, err, ErrKeyCollision)

	_, err = MarshalCanonical(Object{"outer": obj})
	assert.ErrorIs(t, err, ErrKeyCollision, "nested objects are checked too")
}

func TestParseRejectsNFCKeyCollision(t *testing.T) {
	_, err := ParseObject([]byte(`{"e\u0301": 1, "\u00e9": 2}`))
	assert.ErrorIs(t, err, ErrKeyCollision)
}

func TestCheckKeys(t *testing.T) {
	assert.NoError(t, CheckKeys(nil))
	assert.NoError(t, CheckKeys(Object{"a": Int(1), "b": Int(2)}))
	assert.NoError(t, CheckKeys(Object{"e\u0301": Int(1)}))

	err := CheckKeys(Object{"e\u0301": Int(1), "\u00e9": Int(2)})
	require.ErrorIs(t, err, ErrKeyCollision)
	assert.Contains(t, err.Error(), "\"e\u0301\" and \"\u00e9\"")
}

func TestMarshalCanonicalInvalidUTF8(t *testing.T) {
	got, err := MarshalCanonical(String("a\xffb"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\ufffdb\"", string(got))
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	obj := Object{"b": Int(2), "a": Int(1), "c": Array{Bool(true), Null{}}}

	first, err := MarshalCanonical(obj)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := MarshalCanonical(obj)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMarshalCanonicalRejectsMissingValue(t *testing.T) {
	_, err := MarshalCanonical(Object{"broken": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"broken"`)
}
