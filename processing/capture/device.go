package capture

import (
	"errors"
	"fmt"
	"image"
	"log"
)

var (
	ErrEmptyFrame = errors.New("camera returned no frame")
	ErrNoBackend  = errors.New("no capture backend configured")
)

// Device is an opened camera. It is owned by a single Grab call.
type Device interface {
	// Read returns one frame. A failed read returns an untyped nil image,
	// never a nil pointer wrapped in image.Image.
	Read() (image.Image, error)
	Close() error
}

type OpenFunc func(index int) (Device, error)

// Grab opens the device, reads exactly one frame and releases the device
// on every return path.
func Grab(open OpenFunc, index int) (img image.Image, err error) {
	dev, err := open(index)
	if err != nil {
		return nil, fmt.Errorf("cannot open camera %d: %w", index, err)
	}

	defer func() {
		if cerr := dev.Close(); cerr != nil {
			log.Printf("camera %d close: %v", index, cerr)
		}
	}()

	img, err = dev.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read frame from camera %d: %w", index, err)
	}

	if rgba, ok := img.(*image.RGBA); img == nil || (ok && rgba == nil) || img.Bounds().Empty() {
		return nil, ErrEmptyFrame
	}

	return img, nil
}
