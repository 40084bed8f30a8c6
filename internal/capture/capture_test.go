package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/joshvictor1024/go-fractal/internal/bitmap"
	"github.com/joshvictor1024/go-fractal/pkg/fractal"
	"github.com/joshvictor1024/go-fractal/pkg/types"
)

var testParams = fractal.Params{
	Bounds:        types.Bounds{Xmin: -2, Xmax: 2, Ymin: -1.5, Ymax: 1.5},
	Mode:          types.Mandelbrot,
	MaxIterations: 16,
}

var testSize = types.Dimension{Width: 16, Height: 12}

// recordingRenderer renders with a real engine and remembers every request.
type recordingRenderer struct {
	eng *fractal.Engine

	mu      sync.Mutex
	params  []fractal.Params
	display []bool
	failAt  int
}

func newRecordingRenderer(t *testing.T) *recordingRenderer {
	t.Helper()
	eng, err := fractal.New(2, fractal.WithProgressInterval(0))
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	return &recordingRenderer{eng: eng, failAt: -1}
}

func (r *recordingRenderer) Render(p fractal.Params, dst *fractal.Buffer) (time.Duration, error) {
	r.mu.Lock()
	n := len(r.params)
	r.params = append(r.params, p)
	r.mu.Unlock()
	if n == r.failAt {
		return 0, errors.New("render failed")
	}
	return r.eng.Render(p, dst)
}

func (r *recordingRenderer) SetProgressDisplay(enabled bool) {
	r.mu.Lock()
	r.display = append(r.display, enabled)
	r.mu.Unlock()
	r.eng.SetProgressDisplay(enabled)
}

type frameMetrics struct {
	mu    sync.Mutex
	saved int
}

func (m *frameMetrics) RecordPass(time.Duration, int)  {}
func (m *frameMetrics) SetProgress(float64)            {}
func (m *frameMetrics) IncrementPaletteRebuild(string) {}
func (m *frameMetrics) RecordFrameSaved(time.Duration) {
	m.mu.Lock()
	m.saved++
	m.mu.Unlock()
}

func decodeFile(t *testing.T, name string) types.Dimension {
	t.Helper()
	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	img, err := bmp.Decode(f)
	require.NoError(t, err)
	return types.Dimension{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}
}

func TestPhoto(t *testing.T) {
	r := newRecordingRenderer(t)
	m := &frameMetrics{}
	var published []*fractal.Buffer
	rec := NewRecorder(r,
		WithMetrics(m),
		WithPublisher(func(b *fractal.Buffer) { published = append(published, b) }),
	)

	stem := filepath.Join(t.TempDir(), "mandel")
	name, err := rec.Photo(testParams, testSize, stem)
	require.NoError(t, err)
	require.Equal(t, stem+"0.bmp", name)
	require.Equal(t, testSize, decodeFile(t, name))

	require.Len(t, r.params, 1)
	require.Equal(t, testParams, r.params[0])
	require.Len(t, published, 1)
	require.Equal(t, 1, m.saved)
}

func TestPhotoRenderError(t *testing.T) {
	r := newRecordingRenderer(t)
	rec := NewRecorder(r)

	bad := testParams
	bad.MaxIterations = 0
	_, err := rec.Photo(bad, testSize, filepath.Join(t.TempDir(), "mandel"))
	require.ErrorIs(t, err, fractal.ErrInvalidParams)
}

func TestSequenceZoomsBetweenFrames(t *testing.T) {
	r := newRecordingRenderer(t)
	m := &frameMetrics{}
	rec := NewRecorder(r, WithMetrics(m), WithSavers(3))

	stem := filepath.Join(t.TempDir(), "zoom")
	require.NoError(t, rec.Sequence(context.Background(), testParams, testSize, stem, 3, 2))

	require.Equal(t, []bool{false}, r.display)
	require.Len(t, r.params, 3)
	for i, p := range r.params {
		require.Equal(t, testSize, decodeFile(t, bitmap.FileName(stem, i)))
		if i == 0 {
			require.Equal(t, testParams.Bounds, p.Bounds)
			continue
		}
		prev := r.params[i-1].Bounds
		require.Less(t, p.Bounds.Width(), prev.Width())
		require.InDelta(t, prev.Width()/2, p.Bounds.Width(), 1e-12)
		require.InDelta(t, prev.Height()/2, p.Bounds.Height(), 1e-12)
		// zooming keeps the centre
		require.InDelta(t, (prev.Xmin+prev.Xmax)/2, (p.Bounds.Xmin+p.Bounds.Xmax)/2, 1e-12)
	}
	require.Equal(t, 3, m.saved)

	_, err := os.Stat(stem + "3.bmp")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSequenceStopsOnRenderError(t *testing.T) {
	r := newRecordingRenderer(t)
	r.failAt = 2
	rec := NewRecorder(r)

	stem := filepath.Join(t.TempDir(), "zoom")
	err := rec.Sequence(context.Background(), testParams, testSize, stem, 5, 2)
	require.Error(t, err)
	require.Contains(t, err.Error(), "frame 2")

	// frames rendered before the failure are still written
	require.FileExists(t, stem+"0.bmp")
	require.FileExists(t, stem+"1.bmp")
	require.NoFileExists(t, stem+"2.bmp")
}

func TestSequenceCancelled(t *testing.T) {
	r := newRecordingRenderer(t)
	rec := NewRecorder(r)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stem := filepath.Join(t.TempDir(), "zoom")
	err := rec.Sequence(ctx, testParams, testSize, stem, 3, 2)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, r.params)
	require.NoFileExists(t, stem+"0.bmp")
}

func TestSequenceSaveError(t *testing.T) {
	r := newRecordingRenderer(t)
	rec := NewRecorder(r)

	stem := filepath.Join(t.TempDir(), "missing", "zoom")
	err := rec.Sequence(context.Background(), testParams, testSize, stem, 2, 2)
	require.Error(t, err)
	require.Len(t, r.params, 2)
}

func TestSequenceRejectsBadArguments(t *testing.T) {
	rec := NewRecorder(newRecordingRenderer(t))
	dir := t.TempDir()

	require.Error(t, rec.Sequence(context.Background(), testParams, testSize, filepath.Join(dir, "a"), 0, 2))
	require.Error(t, rec.Sequence(context.Background(), testParams, testSize, filepath.Join(dir, "b"), 3, 0))
	require.Error(t, rec.Sequence(context.Background(), testParams, testSize, filepath.Join(dir, "c"), 3, 0.5))
	require.Error(t, rec.Sequence(context.Background(), testParams, testSize, filepath.Join(dir, "d"), 3, 1))
	require.NoFileExists(t, filepath.Join(dir, "c0.bmp"))
	require.NoFileExists(t, filepath.Join(dir, "d0.bmp"))
}

func TestSequenceSlowZoomKeepsShrinking(t *testing.T) {
	r := newRecordingRenderer(t)
	rec := NewRecorder(r)

	stem := filepath.Join(t.TempDir(), "slow")
	require.NoError(t, rec.Sequence(context.Background(), testParams, testSize, stem, 4, 1.25))

	require.Len(t, r.params, 4)
	for i := 1; i < len(r.params); i++ {
		prev, cur := r.params[i-1].Bounds, r.params[i].Bounds
		require.True(t, cur.Valid(), "frame %d bounds %s", i, cur)
		require.Less(t, cur.Width(), prev.Width())
	}
}
