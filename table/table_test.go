package table

import (
	"testing"

	"github.com/hupe1980/colgo/column"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("LengthAgreement", func(t *testing.T) {
		_, err := New(column.Int64Column(1, 2), column.StringColumn("a"))
		assert.Error(t, err)
	})

	t.Run("NoColumns", func(t *testing.T) {
		_, err := New()
		assert.Error(t, err)
	})

	t.Run("NilColumn", func(t *testing.T) {
		_, err := New(nil)
		assert.Error(t, err)
	})

	t.Run("Unnamed", func(t *testing.T) {
		tbl, err := New(column.Int64Column(1, 2), column.StringColumn("a", "b"))
		require.NoError(t, err)
		assert.Equal(t, 2, tbl.NumColumns())
		assert.Equal(t, int64(2), tbl.Len())
		assert.Equal(t, "c0", tbl.Name(0))
		assert.Equal(t, "c1", tbl.Name(1))
		assert.False(t, tbl.Named())
	})
}

func TestNewWithNames(t *testing.T) {
	tbl, err := NewWithNames([]string{"id", "tag"}, []*column.Chunked{
		column.Int64Column(1, 2),
		column.StringColumn("a", "b"),
	})
	require.NoError(t, err)
	assert.True(t, tbl.Named())
	assert.Equal(t, "tag", tbl.Name(1))

	c, ok := tbl.ColumnByName("id")
	require.True(t, ok)
	assert.Equal(t, column.KindInt64, c.Kind())

	_, ok = tbl.ColumnByName("missing")
	assert.False(t, ok)

	_, err = NewWithNames([]string{"only"}, []*column.Chunked{
		column.Int64Column(1),
		column.Int64Column(2),
	})
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	tbl, err := NewWithNames([]string{"id", "score"}, []*column.Chunked{
		column.Int64Column(1),
		column.Float64Column(0.5),
	})
	require.NoError(t, err)

	s := tbl.Schema()
	assert.Equal(t, Schema{
		{Name: "id", Kind: column.KindInt64},
		{Name: "score", Kind: column.KindFloat64},
	}, s)
	assert.Equal(t, "id:int64, score:float64", s.String())

	assert.True(t, s.Equal(s))
	assert.False(t, s.Equal(s[:1]))
	assert.False(t, s.Equal(Schema{
		{Name: "id", Kind: column.KindInt64},
		{Name: "score", Kind: column.KindFloat32},
	}))
}

func TestRow(t *testing.T) {
	tbl, err := New(column.Int64Column(1, 2), column.StringColumn("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []column.Value{column.Int64(2), column.String("b")}, tbl.Row(1))
}
