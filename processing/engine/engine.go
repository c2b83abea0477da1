package engine

import (
	"fmt"
	"image"
	"log"
	"strconv"
	"strings"

	"imgproc/internal/models"
	"imgproc/processing/capture"
)

// MaxPixels bounds the resize target, a 1 GiB RGBA buffer.
const MaxPixels = 1 << 28

// Engine owns the original/current image pair. It is not safe for
// concurrent use; the UI calls it from its event callbacks only.
type Engine struct {
	open capture.OpenFunc

	original *image.RGBA
	current  *image.RGBA

	mode   models.ColorMode
	lastOp Operation
}

// NewEngine returns an empty engine. open may be nil, in which case
// Capture fails with ErrDevice.
func NewEngine(open capture.OpenFunc) *Engine {
	return &Engine{
		open: open,
		mode: models.ModeRGB,
	}
}

// SetOpener switches the capture backend used by later Capture calls.
func (e *Engine) SetOpener(open capture.OpenFunc) {
	e.open = open
}

func (e *Engine) Load(path string) error {
	img, flattened, err := LoadFile(path)
	if err != nil {
		return err
	}

	e.setOriginal(img)
	log.Printf("loaded %s: %dx%d, flattened alpha: %t", path, img.Rect.Dx(), img.Rect.Dy(), flattened)

	return nil
}

func (e *Engine) Capture(deviceIndex int) error {
	if e.open == nil {
		return newError(ErrDevice, "cannot open webcam", capture.ErrNoBackend)
	}

	img, err := capture.Grab(e.open, deviceIndex)
	if err != nil {
		return newError(ErrDevice, "cannot capture image", err)
	}

	e.SetImage(img)
	log.Printf("captured frame from camera %d: %dx%d", deviceIndex, e.original.Rect.Dx(), e.original.Rect.Dy())

	return nil
}

// SetImage replaces the original with the normalized img and resets the
// view. It reports whether transparency had to be flattened.
func (e *Engine) SetImage(img image.Image) bool {
	original, flattened := Normalize(img)
	e.setOriginal(original)

	return flattened
}

func (e *Engine) setOriginal(original *image.RGBA) {
	e.original = original
	e.current = Clone(original)
	e.mode = models.ModeRGB
	e.lastOp = nil
}

func (e *Engine) ApplyChannel(mode models.ColorMode) error {
	if e.original == nil {
		return errNoImage
	}

	if mode.Plane() < 0 && mode != models.ModeRGB {
		return newError(ErrValidation, "unknown color channel "+strconv.Quote(string(mode)), nil)
	}

	e.apply(ChannelOp{Mode: mode})
	e.mode = mode

	return nil
}

func (e *Engine) ApplyChannelName(name string) error {
	if e.original == nil {
		return errNoImage
	}

	mode, err := models.ParseColorMode(name)
	if err != nil {
		return newError(ErrValidation, "invalid color channel", err)
	}

	return e.ApplyChannel(mode)
}

// Resize takes the raw text of the width and height inputs. The color
// mode is left as is even though the result is always full color.
func (e *Engine) Resize(width, height string) error {
	if e.original == nil {
		return errNoImage
	}

	w, h, err := ParseDimensions(width, height)
	if err != nil {
		return err
	}

	return e.ResizeTo(w, h)
}

func (e *Engine) ResizeTo(width, height int) error {
	if e.original == nil {
		return errNoImage
	}

	if width <= 0 || height <= 0 {
		return newError(ErrValidation, "width and height must be greater than 0", nil)
	}

	if int64(width)*int64(height) > MaxPixels {
		return newError(ErrValidation, fmt.Sprintf("image size too large: %dx%d (at most %d pixels)", width, height, MaxPixels), nil)
	}

	e.apply(ResizeOp{Width: width, Height: height})

	return nil
}

func (e *Engine) apply(op Operation) {
	e.current = Transform(e.original, op)
	e.lastOp = op
}

// ParseDimensions parses the width and height inputs. Both must be
// positive integers.
func ParseDimensions(width, height string) (int, int, error) {
	w, err := strconv.Atoi(strings.TrimSpace(width))
	if err != nil {
		return 0, 0, newError(ErrValidation, "invalid width or height", err)
	}

	h, err := strconv.Atoi(strings.TrimSpace(height))
	if err != nil {
		return 0, 0, newError(ErrValidation, "invalid width or height", err)
	}

	if w <= 0 || h <= 0 {
		return 0, 0, newError(ErrValidation, "width and height must be greater than 0", nil)
	}

	return w, h, nil
}

func (e *Engine) Loaded() bool {
	return e.original != nil
}

// Original must not be modified by the caller.
func (e *Engine) Original() *image.RGBA {
	return e.original
}

// Current is the buffer to display. It must not be modified by the caller.
func (e *Engine) Current() *image.RGBA {
	return e.current
}

func (e *Engine) Mode() models.ColorMode {
	return e.mode
}

// LastOperation is nil right after a load or capture.
func (e *Engine) LastOperation() Operation {
	return e.lastOp
}

// Size is the size of the original, zero when nothing is loaded.
func (e *Engine) Size() image.Point {
	if e.original == nil {
		return image.Point{}
	}
	return e.original.Rect.Size()
}
