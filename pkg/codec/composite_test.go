package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/cqlwire/pkg/cql"
)

func TestTupleAddressScenario(t *testing.T) {
	typ, err := cql.ParseType("tuple<text,text,int>")
	require.NoError(t, err)

	address, err := cql.NewTuple(typ, "Phoenix", "9042 Cassandra Lane", 85023)
	require.NoError(t, err)

	b, err := Encode(address.Value())
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0, 0, 0, 7, 'P', 'h', 'o', 'e', 'n', 'i', 'x',
		0, 0, 0, 19, '9', '0', '4', '2', ' ', 'C', 'a', 's', 's', 'a', 'n', 'd', 'r', 'a', ' ', 'L', 'a', 'n', 'e',
		0, 0, 0, 4, 0, 1, 0x4c, 0x1f,
	}, b)

	decoded, err := Decode(typ, b)
	require.NoError(t, err)
	tuple := decoded.Tuple()
	assert.Equal(t, 3, tuple.Count())
	assert.Equal(t, []cql.Value{
		cql.NewText("Phoenix"),
		cql.NewText("9042 Cassandra Lane"),
		cql.NewInt(85023),
	}, tuple.Values())
}

func TestTupleNullElement(t *testing.T) {
	typ := cql.TupleType(cql.TypeText, cql.TypeInt)
	v, err := typ.Create(nil, 1)
	require.NoError(t, err)

	b, err := Encode(v)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0, 0, 0, 4, 0, 0, 0, 1}, b)

	decoded, err := Decode(typ, b)
	require.NoError(t, err)
	assert.True(t, decoded.Tuple().At(0).IsNull())
	assert.Equal(t, int64(1), decoded.Tuple().At(1).Int64())
}

func TestTupleDecodeErrors(t *testing.T) {
	typ := cql.TupleType(cql.TypeText, cql.TypeInt)
	for _, tc := range []struct {
		name string
		data []byte
	}{
		{"missing element", []byte{0, 0, 0, 1, 'a'}},
		{"truncated length", []byte{0, 0, 0, 1, 'a', 0, 0}},
		{"element overruns", []byte{0, 0, 0, 5, 'a'}},
		{"trailing bytes", []byte{0, 0, 0, 1, 'a', 0, 0, 0, 4, 0, 0, 0, 1, 9}},
		{"wrong element width", []byte{0, 0, 0, 1, 'a', 0, 0, 0, 2, 0, 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(typ, tc.data)
			require.Error(t, err)
			assert.True(t, IsDecodeError(err))
		})
	}
}

func TestUDTMissingTrailingFields(t *testing.T) {
	udt := cql.UDTType("ks", "address",
		cql.Field{Name: "street", Type: cql.TypeText},
		cql.Field{Name: "zip", Type: cql.TypeInt},
	)
	v, err := Decode(udt, []byte{0, 0, 0, 1, 'a'})
	require.NoError(t, err)
	zip, ok := v.Field("zip")
	require.True(t, ok)
	assert.True(t, zip.IsNull())
}

func TestSplitAndJoinElements(t *testing.T) {
	elems := [][]byte{[]byte("a"), nil, {}}
	b, err := JoinElements(elems)
	require.NoError(t, err)

	split, err := SplitElements(cql.TupleType(cql.TypeText, cql.TypeText, cql.TypeText), b, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), split[0])
	assert.Nil(t, split[1])
	assert.NotNil(t, split[2])
	assert.Len(t, split[2], 0)

	empty, err := JoinElements(nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)
}

func TestSetDecodeDropsDuplicates(t *testing.T) {
	b := []byte{0, 0, 0, 2, 0, 0, 0, 1, 'a', 0, 0, 0, 1, 'a'}
	v, err := Decode(cql.SetType(cql.TypeText), b)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Len())
}
