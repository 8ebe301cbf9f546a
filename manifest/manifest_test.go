package manifest

import (
	"testing"

	"github.com/hupe1980/colgo/column"
	"github.com/hupe1980/colgo/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validManifest() *Manifest {
	return &Manifest{
		Version: CurrentVersion,
		ID:      1,
		Rows:    3,
		SortKey: []SortField{{Column: "id"}},
		Columns: []ColumnFile{
			{Name: "id", Path: "cols/id.bin", Kind: column.KindInt64, Rows: 3},
			{Name: "name", Path: "cols/name.bin", Kind: column.KindString, Rows: 3, NullCount: 1},
		},
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "MANIFEST-000001.json", Filename(1))
	assert.Equal(t, "MANIFEST-000042.json", Filename(42))
	assert.Equal(t, "MANIFEST-1000000.json", Filename(1000000))
}

func TestManifest_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, validManifest().Validate())
	})

	t.Run("WrongVersion", func(t *testing.T) {
		m := validManifest()
		m.Version = 999
		assert.ErrorIs(t, m.Validate(), ErrIncompatibleVersion)
	})

	t.Run("NoColumns", func(t *testing.T) {
		m := validManifest()
		m.Columns = nil
		assert.ErrorIs(t, m.Validate(), ErrInvalid)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		m := validManifest()
		m.Columns[1].Name = "id"
		assert.ErrorIs(t, m.Validate(), ErrInvalid)
	})

	t.Run("DuplicatePath", func(t *testing.T) {
		m := validManifest()
		m.Columns[1].Path = m.Columns[0].Path
		assert.ErrorIs(t, m.Validate(), ErrInvalid)
	})

	t.Run("EmptyName", func(t *testing.T) {
		m := validManifest()
		m.Columns[0].Name = ""
		assert.ErrorIs(t, m.Validate(), ErrInvalid)
	})

	t.Run("EmptyPath", func(t *testing.T) {
		m := validManifest()
		m.Columns[0].Path = ""
		assert.ErrorIs(t, m.Validate(), ErrInvalid)
	})

	t.Run("NonColumnarKind", func(t *testing.T) {
		m := validManifest()
		m.Columns[0].Kind = column.KindNull
		assert.ErrorIs(t, m.Validate(), ErrInvalid)
	})

	t.Run("RowMismatch", func(t *testing.T) {
		m := validManifest()
		m.Columns[1].Rows = 2
		assert.ErrorIs(t, m.Validate(), ErrInvalid)
	})

	t.Run("NullCountOutOfRange", func(t *testing.T) {
		m := validManifest()
		m.Columns[0].NullCount = 4
		assert.ErrorIs(t, m.Validate(), ErrInvalid)
	})

	t.Run("UnknownSortColumn", func(t *testing.T) {
		m := validManifest()
		m.SortKey = []SortField{{Column: "missing"}}
		assert.ErrorIs(t, m.Validate(), ErrInvalid)
	})

	t.Run("RepeatedSortColumn", func(t *testing.T) {
		m := validManifest()
		m.SortKey = []SortField{{Column: "id"}, {Column: "id", Descending: true}}
		assert.ErrorIs(t, m.Validate(), ErrInvalid)
	})
}

func TestManifest_Column(t *testing.T) {
	m := validManifest()

	c, ok := m.Column("name")
	require.True(t, ok)
	assert.Equal(t, "cols/name.bin", c.Path)
	assert.Equal(t, column.KindString, c.Kind)

	_, ok = m.Column("missing")
	assert.False(t, ok)
}

func TestManifest_Schema(t *testing.T) {
	m := validManifest()

	want := table.Schema{
		{Name: "id", Kind: column.KindInt64},
		{Name: "name", Kind: column.KindString},
	}
	assert.True(t, m.Schema().Equal(want))
}
