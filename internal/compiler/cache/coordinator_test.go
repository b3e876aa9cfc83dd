package cache

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fooSource = `namespace App
{
	public partial class Foo
	{
		[SimpleStyledProperty] private int _direction;
	}
}
`

const barSource = `namespace App
{
	public partial class Bar
	{
		[SimpleAttachedProperty] private IBrush _brush;
	}
}
`

func newTestCoordinator(t *testing.T) (*Coordinator, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/Foo.cs", []byte(fooSource), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/src/Bar.cs", []byte(barSource), 0o644))
	return NewCoordinator(fs, nil, 2, nil), fs
}

func TestCoordinator_ParseFilesKeepsOrder(t *testing.T) {
	c, _ := newTestCoordinator(t)

	results, metrics, err := c.ParseFiles(context.Background(), []string{"/src/Foo.cs", "/src/Bar.cs"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "/src/Foo.cs", results[0].Path)
	assert.Equal(t, "Foo", results[0].File.Classes[0].Name)
	assert.Equal(t, "Bar", results[1].File.Classes[0].Name)
	assert.False(t, results[0].Cached)

	assert.Equal(t, 2, metrics.TotalFiles)
	assert.Equal(t, 2, metrics.CacheMisses)
	assert.Equal(t, 2, metrics.FilesParsed)
	assert.Equal(t, 0.0, metrics.CacheHitRate())
	assert.Equal(t, 2, c.CacheSize())
}

func TestCoordinator_SecondPassHitsCache(t *testing.T) {
	c, fs := newTestCoordinator(t)
	paths := []string{"/src/Foo.cs", "/src/Bar.cs"}

	first, _, err := c.ParseFiles(context.Background(), paths)
	require.NoError(t, err)

	second, metrics, err := c.ParseFiles(context.Background(), paths)
	require.NoError(t, err)
	assert.True(t, second[0].Cached)
	assert.Same(t, first[0].File, second[0].File)
	assert.Equal(t, 100.0, metrics.CacheHitRate())

	// editing a file forces a re-parse of that file only
	edited := fooSource + "// trailing comment\n"
	require.NoError(t, afero.WriteFile(fs, "/src/Foo.cs", []byte(edited), 0o644))

	third, metrics, err := c.ParseFiles(context.Background(), paths)
	require.NoError(t, err)
	assert.False(t, third[0].Cached)
	assert.True(t, third[1].Cached)
	assert.Equal(t, 1, metrics.CacheHits)
	assert.Equal(t, 1, metrics.CacheMisses)
	assert.Equal(t, metrics, c.GetMetrics())
}

func TestCoordinator_MissingFileFails(t *testing.T) {
	c, _ := newTestCoordinator(t)

	_, _, err := c.ParseFiles(context.Background(), []string{"/src/Foo.cs", "/src/Missing.cs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/src/Missing.cs")
}

func TestCoordinator_CancelledContext(t *testing.T) {
	c, _ := newTestCoordinator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := c.ParseFiles(ctx, []string{"/src/Foo.cs"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCoordinator_WatchModeParse(t *testing.T) {
	c, fs := newTestCoordinator(t)
	ctx := context.Background()

	_, _, err := c.ParseFiles(ctx, []string{"/src/Foo.cs", "/src/Bar.cs"})
	require.NoError(t, err)

	require.NoError(t, fs.Remove("/src/Bar.cs"))
	results, metrics, err := c.WatchModeParse(ctx, []string{"/src/Foo.cs"}, []string{"/src/Foo.cs"})
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.False(t, results[0].Cached)
	assert.Equal(t, 1, metrics.CacheMisses)
	assert.Equal(t, 1, c.CacheSize())

	c.Clear()
	assert.Equal(t, 0, c.CacheSize())
	assert.Equal(t, 0, c.GetMetrics().TotalFiles)
}
