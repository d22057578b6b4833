package snowapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRowTypes() []RowType {
	return []RowType{
		{Name: "ID", Type: "fixed", Scale: 0},
		{Name: "NAME", Type: "text"},
	}
}

func TestRow_ColumnCaseInsensitiveLookup(t *testing.T) {
	rowTypes := testRowTypes()
	idx := buildColumnIndex(rowTypes)
	row := newRow(rowTypes, idx, []*string{strp("42"), strp("Ada")})

	v, err := row.Column("name")
	require.NoError(t, err)
	assert.Equal(t, "Ada", v)

	v, err = row.Column("NAME")
	require.NoError(t, err)
	assert.Equal(t, "Ada", v)
}

func TestRow_ColumnUnknownName(t *testing.T) {
	rowTypes := testRowTypes()
	idx := buildColumnIndex(rowTypes)
	row := newRow(rowTypes, idx, []*string{strp("42"), strp("Ada")})

	_, err := row.Column("missing")
	assert.Error(t, err)
}

func TestRow_PairsPreservesMetadataOrder(t *testing.T) {
	rowTypes := testRowTypes()
	idx := buildColumnIndex(rowTypes)
	row := newRow(rowTypes, idx, []*string{strp("42"), strp("Ada")})

	pairs, err := row.Pairs()
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "ID", pairs[0].Name)
	assert.Equal(t, "NAME", pairs[1].Name)
	assert.Equal(t, "Ada", pairs[1].Value)
}

func TestRow_ToMap(t *testing.T) {
	rowTypes := testRowTypes()
	idx := buildColumnIndex(rowTypes)
	row := newRow(rowTypes, idx, []*string{strp("42"), strp("Ada")})

	m, err := row.ToMap()
	require.NoError(t, err)
	assert.Equal(t, "Ada", m["NAME"])
}

func TestRow_AtOutOfRange(t *testing.T) {
	rowTypes := testRowTypes()
	idx := buildColumnIndex(rowTypes)
	row := newRow(rowTypes, idx, []*string{strp("42"), strp("Ada")})

	_, err := row.At(5)
	assert.Error(t, err)
}
