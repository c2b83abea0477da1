package engine

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"imgproc/internal/models"
	"imgproc/processing/capture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i+0] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x), uint8(y), uint8(x + y), 0xff})
		}
	}
	return img
}

// writePhoto writes a w×h RGBA png whose left half is half transparent.
func writePhoto(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint8(0xff)
			if x < w/2 {
				a = 128
			}
			img.SetNRGBA(x, y, color.NRGBA{200, 100, uint8(y), a})
		}
	}

	path := filepath.Join(t.TempDir(), "photo.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, img))

	return path
}

func requireOpaque(t *testing.T, img *image.RGBA) {
	t.Helper()
	for i := 3; i < len(img.Pix); i += 4 {
		require.Equal(t, uint8(0xff), img.Pix[i], "alpha at byte %d", i)
	}
}

func loaded(t *testing.T, img image.Image) *Engine {
	t.Helper()
	e := NewEngine(nil)
	e.SetImage(img)
	return e
}

func TestLoadFlattensAlphaOverWhite(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.Load(writePhoto(t, 300, 200)))

	require.True(t, e.Loaded())
	assert.Equal(t, image.Pt(300, 200), e.Size())
	requireOpaque(t, e.Original())

	half := e.Original().RGBAAt(10, 0)
	assert.InDelta(t, 227, int(half.R), 1)
	assert.InDelta(t, 177, int(half.G), 1)
	assert.InDelta(t, 127, int(half.B), 1)

	assert.Equal(t, color.RGBA{200, 100, 0, 0xff}, e.Original().RGBAAt(299, 0))

	assert.Equal(t, e.Original().Pix, e.Current().Pix)
	assert.Equal(t, models.ModeRGB, e.Mode())
	assert.Nil(t, e.LastOperation())
}

func TestLoadResetsMode(t *testing.T) {
	e := loaded(t, gradient(8, 8))
	require.NoError(t, e.ApplyChannel(models.ModeGreen))

	require.NoError(t, e.Load(writePhoto(t, 4, 4)))
	assert.Equal(t, models.ModeRGB, e.Mode())
	assert.Equal(t, image.Pt(4, 4), e.Current().Bounds().Size())
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	notImage := filepath.Join(dir, "notes.png")
	require.NoError(t, os.WriteFile(notImage, []byte("hello"), 0644))

	e := loaded(t, gradient(5, 5))
	before := e.Current()

	for _, path := range []string{filepath.Join(dir, "missing.png"), notImage, dir} {
		err := e.Load(path)
		require.ErrorIs(t, err, ErrIO, path)
		assert.Same(t, before, e.Current())
		assert.Equal(t, image.Pt(5, 5), e.Size())
	}
}

func TestSetImageNormalizesBounds(t *testing.T) {
	src := gradient(20, 20).SubImage(image.Rect(5, 5, 15, 12)).(*image.RGBA)

	e := loaded(t, src)
	assert.Equal(t, image.Rect(0, 0, 10, 7), e.Original().Bounds())
	assert.Equal(t, src.RGBAAt(5, 5), e.Original().RGBAAt(0, 0))
}

func TestApplyChannelIsolates(t *testing.T) {
	src := gradient(16, 9)
	e := loaded(t, src)

	cases := []struct {
		mode models.ColorMode
		keep int
	}{
		{models.ModeRed, 0},
		{models.ModeGreen, 1},
		{models.ModeBlue, 2},
	}

	for _, tc := range cases {
		require.NoError(t, e.ApplyChannel(tc.mode))
		assert.Equal(t, tc.mode, e.Mode())

		cur := e.Current()
		require.Equal(t, src.Bounds(), cur.Bounds())
		requireOpaque(t, cur)

		for i := 0; i < len(cur.Pix); i += 4 {
			for p := 0; p < 3; p++ {
				if p == tc.keep {
					require.Equal(t, src.Pix[i+p], cur.Pix[i+p])
				} else {
					require.Zero(t, cur.Pix[i+p])
				}
			}
		}
	}
}

func TestApplyChannelRGBRestoresOriginal(t *testing.T) {
	e := loaded(t, gradient(12, 7))
	original := append([]byte(nil), e.Original().Pix...)

	require.NoError(t, e.ApplyChannel(models.ModeRed))
	require.NoError(t, e.ApplyChannel(models.ModeRGB))

	assert.Equal(t, original, e.Current().Pix)
	assert.Equal(t, original, e.Original().Pix)
}

func TestApplyChannelName(t *testing.T) {
	e := loaded(t, gradient(4, 4))

	require.NoError(t, e.ApplyChannelName("Blue"))
	assert.Equal(t, models.ModeBlue, e.Mode())

	err := e.ApplyChannelName("Purple")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, models.ModeBlue, e.Mode())

	require.ErrorIs(t, e.ApplyChannel(models.ColorMode("Alpha")), ErrValidation)
}

func TestResizeDimensions(t *testing.T) {
	e := loaded(t, gradient(30, 20))

	for _, size := range []image.Point{{1, 1}, {15, 10}, {60, 40}, {31, 7}, {200, 3}} {
		require.NoError(t, e.ResizeTo(size.X, size.Y))
		assert.Equal(t, size, e.Current().Bounds().Size())
		assert.Equal(t, image.Pt(30, 20), e.Original().Bounds().Size())
		requireOpaque(t, e.Current())
	}
}

func TestResizeIsIdempotent(t *testing.T) {
	e := loaded(t, gradient(40, 30))

	require.NoError(t, e.Resize("17", "11"))
	first := append([]byte(nil), e.Current().Pix...)

	require.NoError(t, e.Resize("17", "11"))
	assert.Equal(t, first, e.Current().Pix)
}

func TestResizeValidation(t *testing.T) {
	e := loaded(t, gradient(10, 10))
	require.NoError(t, e.ApplyChannel(models.ModeRed))
	before := e.Current()

	cases := [][2]string{
		{"0", "100"},
		{"-5", "10"},
		{"abc", "10"},
		{"10", ""},
		{"1.5", "10"},
		{"10", "0"},
	}

	for _, c := range cases {
		err := e.Resize(c[0], c[1])
		require.ErrorIs(t, err, ErrValidation, "%q x %q", c[0], c[1])
		assert.Same(t, before, e.Current())
		assert.Equal(t, models.ModeRed, e.Mode())
	}

	require.ErrorIs(t, e.ResizeTo(0, 5), ErrValidation)
}

func TestResizeRejectsHugeSizes(t *testing.T) {
	e := loaded(t, gradient(4, 4))
	require.NoError(t, e.ApplyChannel(models.ModeGreen))
	before := e.Current()

	cases := [][2]string{
		{"2000000000", "2000000000"},
		{"2000000000", "1"},
		{"1", "268435457"},
		{"65536", "65536"},
	}

	for _, c := range cases {
		var err error
		require.NotPanics(t, func() { err = e.Resize(c[0], c[1]) }, "%s x %s", c[0], c[1])
		require.ErrorIs(t, err, ErrValidation, "%s x %s", c[0], c[1])
		assert.Contains(t, err.Error(), "image size too large")
		assert.Same(t, before, e.Current())
		assert.Equal(t, image.Pt(4, 4), e.Size())
		assert.Equal(t, models.ModeGreen, e.Mode())
	}

	require.ErrorIs(t, e.ResizeTo(1<<30, 1<<30), ErrValidation)
}

func TestParseDimensions(t *testing.T) {
	w, h, err := ParseDimensions(" 640", "480 ")
	require.NoError(t, err)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)

	_, _, err = ParseDimensions("abc", "10")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "invalid width or height: strconv.Atoi: parsing \"abc\": invalid syntax", err.Error())

	_, _, err = ParseDimensions("0", "10")
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "width and height must be greater than 0", err.Error())
}

func TestOperationsRequireImage(t *testing.T) {
	e := NewEngine(nil)

	for _, err := range []error{
		e.ApplyChannel(models.ModeRed),
		e.ApplyChannelName("Red"),
		e.Resize("10", "10"),
		e.Resize("abc", "10"),
		e.ResizeTo(10, 10),
	} {
		require.ErrorIs(t, err, ErrState)
		assert.Equal(t, "no image loaded", err.Error())
	}

	assert.False(t, e.Loaded())
	assert.Nil(t, e.Current())
	assert.Equal(t, image.Point{}, e.Size())
}

func TestResizeUsesOriginalNotIsolation(t *testing.T) {
	e := NewEngine(nil)
	require.NoError(t, e.Load(writePhoto(t, 300, 200)))
	original := append([]byte(nil), e.Original().Pix...)

	require.NoError(t, e.ApplyChannelName("Blue"))
	cur := e.Current()
	assert.Equal(t, image.Pt(300, 200), cur.Bounds().Size())
	for i := 0; i < len(cur.Pix); i += 4 {
		require.Zero(t, cur.Pix[i+0])
		require.Zero(t, cur.Pix[i+1])
		require.Equal(t, original[i+2], cur.Pix[i+2])
	}

	require.NoError(t, e.Resize("150", "100"))
	assert.Equal(t, image.Pt(150, 100), e.Current().Bounds().Size())
	assert.Equal(t, models.ModeBlue, e.Mode())
	assert.Equal(t, ResizeOp{Width: 150, Height: 100}, e.LastOperation())
	assert.Equal(t, Transform(e.Original(), ResizeOp{Width: 150, Height: 100}).Pix, e.Current().Pix)

	// the opaque right half is pure (200,100,y) in the original
	px := e.Current().RGBAAt(140, 0)
	assert.Equal(t, uint8(200), px.R)
	assert.Equal(t, uint8(100), px.G)

	assert.Equal(t, original, e.Original().Pix)
}

type fakeCamera struct {
	frame  image.Image
	err    error
	closed bool
}

func (c *fakeCamera) Read() (image.Image, error) { return c.frame, c.err }

func (c *fakeCamera) Close() error {
	c.closed = true
	return nil
}

func TestCapture(t *testing.T) {
	frame, err := capture.BGRToRGBA([]byte{
		0, 0, 255, 255, 0, 0,
		0, 255, 0, 10, 20, 30,
	}, 2, 2)
	require.NoError(t, err)

	cam := &fakeCamera{frame: frame}
	e := NewEngine(func(index int) (capture.Device, error) {
		assert.Equal(t, 1, index)
		return cam, nil
	})

	require.NoError(t, e.Capture(1))
	assert.True(t, cam.closed)
	assert.Equal(t, image.Pt(2, 2), e.Size())
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, e.Original().RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, e.Original().RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{30, 20, 10, 255}, e.Current().RGBAAt(1, 1))
	assert.Equal(t, models.ModeRGB, e.Mode())
}

func TestCaptureFailuresKeepState(t *testing.T) {
	e := loaded(t, gradient(6, 6))
	before := e.Current()

	cam := &fakeCamera{err: errors.New("VIDIOC_DQBUF: no such device")}
	e.open = func(int) (capture.Device, error) { return cam, nil }

	err := e.Capture(0)
	require.ErrorIs(t, err, ErrDevice)
	assert.True(t, cam.closed)
	assert.Same(t, before, e.Current())

	e.open = func(int) (capture.Device, error) { return nil, errors.New("busy") }
	require.ErrorIs(t, e.Capture(0), ErrDevice)

	e.open = func(int) (capture.Device, error) { return &fakeCamera{}, nil }
	err = e.Capture(0)
	require.ErrorIs(t, err, ErrDevice)
	require.ErrorIs(t, err, capture.ErrEmptyFrame)

	require.ErrorIs(t, NewEngine(nil).Capture(0), ErrDevice)
	assert.Same(t, before, e.Current())
}
