package imaging

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/image-transform-mcp/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestResizeByScale_Dimensions(t *testing.T) {
	tests := []struct {
		w, h         int
		scale        float64
		wantW, wantH int
	}{
		{100, 60, 0.5, 50, 30},
		{100, 100, 0.3, 30, 30},
		{10, 10, 0.3, 3, 3},
		{7, 5, 1, 7, 5},
		{5, 5, 0.5, 2, 2},
		{27, 13, 0.37, 9, 4},
		{1000, 1, 0.001, 1, 0},
	}

	for _, tt := range tests {
		src := createInMemoryImage(tt.w, tt.h, color.NRGBA{1, 2, 3, 255})
		out, err := ResizeByScale(src, tt.scale, Options{ContentType: raster.PNG})
		if tt.wantH == 0 {
			assert.True(t, errors.Is(err, raster.ErrInvalidDimension), "%dx%d@%g: %v", tt.w, tt.h, tt.scale, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.wantW, out.Width, "%dx%d@%g", tt.w, tt.h, tt.scale)
		assert.Equal(t, tt.wantH, out.Height, "%dx%d@%g", tt.w, tt.h, tt.scale)
	}
}

func TestResizeByScale_InvalidScale(t *testing.T) {
	src := createInMemoryImage(4, 4, color.NRGBA{A: 255})

	for _, scale := range []float64{0, -0.5, 1.0001, 2, math.NaN(), math.Inf(1)} {
		_, err := ResizeByScale(src, scale, Options{})
		assert.True(t, errors.Is(err, raster.ErrInvalidDimension), "scale %g: got %v", scale, err)
	}

	_, err := ResizeByScale(&raster.Buffer{Width: 2, Height: 2}, 0.5, Options{})
	assert.True(t, errors.Is(err, raster.ErrBufferSizeMismatch))

	_, err = ResizeByScale(src, 0.5, Options{ContentType: "image/bmp"})
	assert.True(t, errors.Is(err, raster.ErrUnsupportedContentType))
}

func TestFootprintShares_SumToScaleSquared(t *testing.T) {
	for _, scale := range []float64{1, 0.5, 0.3, 0.37, 0.25, 0.9, 0.01} {
		for i := 0; i < 40; i++ {
			for j := 0; j < 40; j += 7 {
				tx, ty := float64(i)*scale, float64(j)*scale
				shares := footprintShares(tx, ty, scale)
				require.LessOrEqual(t, len(shares), 4)

				w := make([]float64, len(shares))
				for k, s := range shares {
					w[k] = s.weight
					assert.Greater(t, s.weight, 0.0)
					assert.Contains(t, []int{int(math.Floor(tx)), int(math.Floor(tx)) + 1}, s.x)
					assert.Contains(t, []int{int(math.Floor(ty)), int(math.Floor(ty)) + 1}, s.y)
				}
				assert.True(t, scalar.EqualWithinAbs(floats.Sum(w), scale*scale, 1e-9),
					"scale %g at (%g,%g): sum %g", scale, tx, ty, floats.Sum(w))
			}
		}
	}
}

func TestFootprintShares_Crossing(t *testing.T) {
	// No crossing: one share
	shares := footprintShares(0, 0, 0.5)
	require.Len(t, shares, 1)
	assert.Equal(t, share{0, 0, 0.25}, shares[0])

	// Crossing on x only: 0.8..1.3
	shares = footprintShares(0.8, 0, 0.5)
	require.Len(t, shares, 2)
	assert.Equal(t, 0, shares[0].x)
	assert.InDelta(t, 0.2*0.5, shares[0].weight, 1e-12)
	assert.Equal(t, 1, shares[1].x)
	assert.InDelta(t, 0.3*0.5, shares[1].weight, 1e-12)

	// Crossing on both axes
	shares = footprintShares(0.8, 1.9, 0.5)
	require.Len(t, shares, 4)
	assert.Equal(t, share{1, 2, shares[3].weight}, shares[3])
	assert.InDelta(t, 0.3*0.4, shares[3].weight, 1e-12)
}

func TestAccumulate_ConservesEnergy(t *testing.T) {
	src := createInMemoryImage(12, 8, color.NRGBA{})
	var total float64
	for y := 0; y < 8; y++ {
		for x := 0; x < 12; x++ {
			r := uint8((x*37 + y*11) % 256)
			src.SetRGBA(x, y, color.NRGBA{r, 0, 0, 255})
			total += float64(r)
		}
	}

	for _, scale := range []float64{0.5, 0.25, 1} {
		tw, th := scaledLength(12, scale), scaledLength(8, scale)
		acc := accumulate(src, scale, tw, th)

		red := make([]float64, tw*th)
		for p := range red {
			red[p] = acc[p*3]
		}
		assert.True(t, scalar.EqualWithinAbs(floats.Sum(red), total*scale*scale, 1e-6),
			"scale %g: %g vs %g", scale, floats.Sum(red), total*scale*scale)
	}
}

func TestResizeByScale_UniformColor(t *testing.T) {
	c := color.NRGBA{77, 128, 201, 255}
	src := createInMemoryImage(27, 19, c)

	for _, scale := range []float64{1, 0.5, 0.3, 0.37, 0.1} {
		out, err := ResizeByScale(src, scale, Options{ContentType: raster.PNG})
		require.NoError(t, err)
		for y := 0; y < out.Height; y++ {
			for x := 0; x < out.Width; x++ {
				require.Equal(t, c, out.RGBAAt(x, y), "scale %g at (%d,%d)", scale, x, y)
			}
		}
	}
}

func TestResizeByScale_SplitImage(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 0, 255, 255}

	// Even split: each output pixel sees one color
	src := createInMemoryImage(4, 4, blue)
	for y := 0; y < 4; y++ {
		src.SetRGBA(0, y, red)
		src.SetRGBA(1, y, red)
	}
	out, err := ResizeByScale(src, 0.5, Options{ContentType: raster.PNG})
	require.NoError(t, err)
	assert.Equal(t, red, out.RGBAAt(0, 0))
	assert.Equal(t, red, out.RGBAAt(0, 1))
	assert.Equal(t, blue, out.RGBAAt(1, 0))
	assert.Equal(t, blue, out.RGBAAt(1, 1))

	// Split at column 1: the left output column is an even blend, 127.5 rounds up
	src = createInMemoryImage(4, 4, blue)
	for y := 0; y < 4; y++ {
		src.SetRGBA(0, y, red)
	}
	out, err = ResizeByScale(src, 0.5, Options{ContentType: raster.PNG})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{128, 0, 128, 255}, out.RGBAAt(0, 0))
	assert.Equal(t, blue, out.RGBAAt(1, 1))
}

func TestResizeByScale_AlphaIsForcedOpaque(t *testing.T) {
	// Transparent pixels contribute black for alpha-capable targets and the
	// output alpha is never averaged.
	src := createInMemoryImage(4, 4, color.NRGBA{255, 255, 255, 0})

	out, err := ResizeByScale(src, 0.5, Options{ContentType: raster.PNG})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.RGBAAt(0, 0))
	assert.True(t, out.IsOpaque())

	// Half-transparent red keeps its straight RGB
	src = createInMemoryImage(2, 2, color.NRGBA{255, 0, 0, 128})
	out, err = ResizeByScale(src, 0.5, Options{ContentType: raster.GIF})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, out.RGBAAt(0, 0))
}

func TestResizeByScale_JPEGMatting(t *testing.T) {
	src := createInMemoryImage(4, 4, color.NRGBA{0, 0, 0, 0})

	out, err := ResizeByScale(src, 0.5, Options{ContentType: raster.JPEG})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, out.RGBAAt(1, 1))

	out, err = ResizeByScale(src, 0.5, Options{ContentType: raster.JPEG, Background: color.NRGBA{0, 100, 0, 255}})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{0, 100, 0, 255}, out.RGBAAt(0, 0))
}

func TestResizeByScale_SourceUntouched(t *testing.T) {
	src := createPatternImage(10, 10)
	before := src.Clone()

	_, err := ResizeByScale(src, 0.3, Options{ContentType: raster.JPEG})
	require.NoError(t, err)
	assert.Equal(t, before.Pix, src.Pix)
}

func TestUpscale(t *testing.T) {
	src := createPatternImage(2, 2)

	out, err := Upscale(src, 4, 4, Options{ContentType: raster.PNG})
	require.NoError(t, err)
	require.Equal(t, 4, out.Width)
	require.Equal(t, 4, out.Height)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, src.RGBAAt(x/2, y/2), out.RGBAAt(x, y), "(%d,%d)", x, y)
		}
	}

	_, err = Upscale(src, 0, 4, Options{})
	assert.True(t, errors.Is(err, raster.ErrInvalidDimension))
}
