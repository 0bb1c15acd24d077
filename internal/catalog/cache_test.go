package catalog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCache_LoadOrStoreFirstWriterWins(t *testing.T) {
	c := NewTableCache()
	k := Key{Schema: "public", Table: "users"}
	first := &TableDescriptor{Schema: "public", Name: "users"}
	second := &TableDescriptor{Schema: "public", Name: "users"}

	got, loaded := c.LoadOrStore(k, first)
	assert.False(t, loaded)
	assert.Same(t, first, got)

	got, loaded = c.LoadOrStore(k, second)
	assert.True(t, loaded)
	assert.Same(t, first, got)
	assert.Equal(t, 1, c.Len())
}

func TestTableCache_KeysAreDistinct(t *testing.T) {
	c := NewTableCache()
	c.LoadOrStore(Key{Schema: "a", Table: "bc"}, &TableDescriptor{Name: "1"})
	c.LoadOrStore(Key{Schema: "ab", Table: "c"}, &TableDescriptor{Name: "2"})

	d, ok := c.Get(Key{Schema: "a", Table: "bc"})
	require.True(t, ok)
	assert.Equal(t, "1", d.Name)

	d, ok = c.Get(Key{Schema: "ab", Table: "c"})
	require.True(t, ok)
	assert.Equal(t, "2", d.Name)

	_, ok = c.Get(Key{Schema: "abc"})
	assert.False(t, ok)
}

func TestTableCache_ConcurrentInsert(t *testing.T) {
	c := NewTableCache()
	const workers = 32

	var wg sync.WaitGroup
	results := make([]*TableDescriptor, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				k := Key{Schema: "s", Table: fmt.Sprintf("t%d", j)}
				d, _ := c.LoadOrStore(k, &TableDescriptor{Name: k.Table})
				if j == 0 {
					results[i] = d
				}
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, c.Len())
	for _, d := range results {
		assert.Same(t, results[0], d)
	}
}

func TestTableDescriptor_Columns(t *testing.T) {
	d := &TableDescriptor{Columns: []ColumnDescriptor{{Name: "id", DataType: "integer"}, {Name: "name"}}}

	c, ok := d.Column("id")
	require.True(t, ok)
	assert.Equal(t, "integer", c.DataType)
	assert.False(t, d.HasColumn("ID"))
	assert.Equal(t, []string{"id", "name"}, d.ColumnNames())
}
