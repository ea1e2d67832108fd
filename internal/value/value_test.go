package value

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopy_RecordIsIndependent(t *testing.T) {
	orig := NewRecord(
		P("score", Int(3)),
		P("inventory", NewList(String("key"), String("lamp"))),
		P("pos", NewRecord(P("x", Float(1.5)))),
	)

	dup := orig.Copy()
	require.True(t, Equal(orig, dup))

	orig["score"] = Int(4)
	orig["inventory"].(List)[0] = String("sword")
	orig["pos"].(Record)["x"] = Float(-2)

	assert.Equal(t, Int(3), dup["score"])
	assert.Equal(t, String("key"), dup["inventory"].(List)[0])
	assert.Equal(t, Float(1.5), dup["pos"].(Record)["x"])
}

func TestCopy_NilStaysNil(t *testing.T) {
	var rec Record
	assert.Nil(t, rec.Copy())

	var list List
	assert.Nil(t, list.Copy())
}

func TestCopy_Scalars(t *testing.T) {
	assert.Equal(t, String("a"), Copy(String("a")))
	assert.Equal(t, Float(2.5), Copy(Float(2.5)))
	assert.Equal(t, Null{}, Copy(Null{}))
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same ints", Int(1), Int(1), true},
		{"int vs float", Int(1), Float(1), false},
		{"lists", NewList(Bool(true)), NewList(Bool(true)), true},
		{"list lengths", NewList(Bool(true)), NewList(), false},
		{"records", NewRecord(P("a", Int(1))), NewRecord(P("a", Int(1))), true},
		{"record missing key", NewRecord(P("a", Int(1))), NewRecord(P("b", Int(1))), false},
		{"nulls", Null{}, Null{}, true},
		{"nil", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	// U+1F600 encodes to a surrogate pair starting 0xD83D, which sorts
	// before U+FB01 in UTF-16 but after it in UTF-8.
	rec := NewRecord(P("\uFB01", Int(1)), P("\U0001F600", Int(2)), P("a", Int(3)))
	assert.Equal(t, []string{"a", "\U0001F600", "\uFB01"}, rec.SortedKeys())
}

func TestUnmarshal_NumberKinds(t *testing.T) {
	v, err := Unmarshal([]byte(`{"i": 3, "f": 2.5, "e": 1e3, "s": "x", "b": true, "n": null, "l": [1]}`))
	require.NoError(t, err)

	rec := v.(Record)
	assert.Equal(t, Int(3), rec["i"])
	assert.Equal(t, Float(2.5), rec["f"])
	assert.Equal(t, Float(1000), rec["e"])
	assert.Equal(t, String("x"), rec["s"])
	assert.Equal(t, Bool(true), rec["b"])
	assert.Equal(t, Null{}, rec["n"])
	assert.Equal(t, NewList(Int(1)), rec["l"])
}

func TestRecord_JSONRoundTripKeepsFloats(t *testing.T) {
	rec := NewRecord(P("x", Float(3)), P("n", Int(3)))

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"n":3,"x":3.0}`, string(data))

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, Equal(rec, back))
}

func TestMarshal_RejectsNonFinite(t *testing.T) {
	_, err := Marshal(Float(math.NaN()))
	assert.Error(t, err)

	_, err = MarshalCanonical(Float(math.Inf(1)))
	assert.Error(t, err)
}

func TestToAny(t *testing.T) {
	rec := NewRecord(P("a", NewList(Int(1), Float(0.5), Bool(false))), P("b", Null{}))
	got := ToAny(rec).(map[string]any)
	assert.Equal(t, []any{int64(1), 0.5, false}, got["a"])
	assert.Nil(t, got["b"])
}

func TestFromAny_Unsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	assert.Error(t, err)
}
