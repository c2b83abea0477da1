// Package opencv registers the gocv capture backend. Importing it links
// OpenCV into the binary.
package opencv

import (
	"fmt"
	"image"

	"imgproc/internal/config"
	"imgproc/processing/capture"

	"gocv.io/x/gocv"
)

func init() {
	capture.Register(config.BackendOpenCV, func(*config.Config) capture.OpenFunc {
		return Open
	})
}

type Camera struct {
	index  int
	webcam *gocv.VideoCapture
}

func Open(index int) (capture.Device, error) {
	webcam, err := gocv.VideoCaptureDevice(index)
	if err != nil {
		return nil, err
	}

	if !webcam.IsOpened() {
		webcam.Close()
		return nil, fmt.Errorf("cannot open webcam %d", index)
	}

	return &Camera{index: index, webcam: webcam}, nil
}

func (c *Camera) Read() (image.Image, error) {
	frame := gocv.NewMat()
	defer frame.Close()

	if ok := c.webcam.Read(&frame); !ok || frame.Empty() {
		return nil, capture.ErrEmptyFrame
	}

	if frame.Channels() != 3 {
		return nil, fmt.Errorf("unexpected frame with %d channels", frame.Channels())
	}

	return capture.BGRToRGBA(frame.ToBytes(), frame.Cols(), frame.Rows())
}

func (c *Camera) Close() error {
	return c.webcam.Close()
}
