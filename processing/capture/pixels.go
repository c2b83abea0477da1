package capture

import (
	"fmt"
	"image"
)

const bytesPerBGRPixel = 3

// BGRToRGBA converts packed bgr24 pixels, the native order of OpenCV and of
// ffmpeg's bgr24 raw output, into an opaque RGBA image.
func BGRToRGBA(buf []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size: %dx%d", width, height)
	}

	if len(buf) != width*height*bytesPerBGRPixel {
		return nil, fmt.Errorf("frame buffer has %d bytes, want %d for %dx%d", len(buf), width*height*bytesPerBGRPixel, width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for i, j := 0, 0; i < len(buf); i, j = i+bytesPerBGRPixel, j+4 {
		img.Pix[j+0] = buf[i+2]
		img.Pix[j+1] = buf[i+1]
		img.Pix[j+2] = buf[i+0]
		img.Pix[j+3] = 0xff
	}

	return img, nil
}
