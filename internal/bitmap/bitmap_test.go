package bitmap

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/joshvictor1024/go-fractal/pkg/fractal"
)

func TestFileName(t *testing.T) {
	require.Equal(t, "mandel0.bmp", FileName("mandel", 0))
	require.Equal(t, "out/zoom149.bmp", FileName("out/zoom", 149))
}

func TestSaveRoundTrip(t *testing.T) {
	buf := fractal.NewBuffer(5, 3)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			buf.SetPixel(x, y, buf.Format.MapRGB(uint8(x*50), uint8(y*100), 7))
		}
	}

	stem := filepath.Join(t.TempDir(), "pic")
	name, err := Save(buf, stem, 4)
	require.NoError(t, err)
	require.Equal(t, stem+"4.bmp", name)

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()

	img, err := bmp.Decode(f)
	require.NoError(t, err)
	require.Equal(t, buf.Bounds(), img.Bounds())

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			want := color.RGBAModel.Convert(buf.At(x, y)).(color.RGBA)
			got := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			require.Equal(t, want, got, "pixel (%d,%d)", x, y)
		}
	}
}

func TestSaveRejectsInvalidBuffer(t *testing.T) {
	_, err := Save(&fractal.Buffer{}, filepath.Join(t.TempDir(), "pic"), 0)
	require.ErrorIs(t, err, fractal.ErrInvalidBuffer)
}

func TestSaveMissingDirectory(t *testing.T) {
	_, err := Save(fractal.NewBuffer(2, 2), filepath.Join(t.TempDir(), "missing", "pic"), 0)
	require.Error(t, err)
}
