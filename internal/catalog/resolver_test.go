package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querydoc/internal/catalog"
	"github.com/roach88/querydoc/internal/testutil"
)

func TestResolver_IntrospectsOnce(t *testing.T) {
	fake := testutil.NewFakeCatalog(testutil.Table("public", "users", "id", "name"))
	r := catalog.NewResolver(fake, nil, "public")
	ctx := context.Background()

	first, err := r.Resolve(ctx, "public", "users")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, "", "users")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, fake.IntrospectCalls("public", "users"))
}

func TestResolver_SharedCacheAcrossResolvers(t *testing.T) {
	fake := testutil.NewFakeCatalog(testutil.Table("public", "users", "id"))
	cache := catalog.NewTableCache()
	ctx := context.Background()

	_, err := catalog.NewResolver(fake, cache, "public").Resolve(ctx, "public", "users")
	require.NoError(t, err)
	_, err = catalog.NewResolver(fake, cache, "public").Resolve(ctx, "public", "users")
	require.NoError(t, err)

	assert.Equal(t, 1, fake.TotalIntrospections())
	d, ok := catalog.NewResolver(fake, cache, "public").Cached("", "users")
	require.True(t, ok)
	assert.Equal(t, "users", d.Name)
}

func TestResolver_MissingTableNotCached(t *testing.T) {
	fake := testutil.NewFakeCatalog()
	r := catalog.NewResolver(fake, nil, "public")

	_, err := r.Resolve(context.Background(), "public", "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, catalog.ErrTableNotFound))
	assert.Equal(t, 0, r.Cache().Len())
}

func TestResolver_ExistsAlwaysAsksBackend(t *testing.T) {
	fake := testutil.NewFakeCatalog(testutil.Table("public", "users", "id"))
	r := catalog.NewResolver(fake, nil, "public")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := r.Exists(ctx, "", "users")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 3, fake.ExistsCalls("public", "users"))
}

func TestResolver_ConcurrentResolve(t *testing.T) {
	fake := testutil.NewFakeCatalog(testutil.Table("public", "users", "id"))
	r := catalog.NewResolver(fake, nil, "public")

	var wg sync.WaitGroup
	got := make([]*catalog.TableDescriptor, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := r.Resolve(context.Background(), "public", "users")
			assert.NoError(t, err)
			got[i] = d
		}(i)
	}
	wg.Wait()

	for _, d := range got {
		assert.Same(t, got[0], d)
	}
	assert.Equal(t, 1, r.Cache().Len())
}
