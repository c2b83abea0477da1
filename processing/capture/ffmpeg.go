package capture

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"

	"imgproc/internal/config"
)

func init() {
	Register(config.BackendFFmpeg, func(cfg *config.Config) OpenFunc {
		name := cfg.GetDeviceName()

		return func(index int) (Device, error) {
			device := name
			if device == "" {
				var err error
				if device, err = defaultDeviceName(runtime.GOOS, index); err != nil {
					return nil, err
				}
			}
			return OpenFFmpegCamera(device)
		}
	})
}

// FFmpegCamera grabs single frames by running ffmpeg against a v4l2 or
// dshow input.
type FFmpegCamera struct {
	closeOnce sync.Once

	deviceName string
	width      int
	height     int

	mu  sync.Mutex
	cmd *exec.Cmd
}

func OpenFFmpegCamera(deviceName string) (*FFmpegCamera, error) {
	w, h, err := probeDeviceDimensions(deviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to probe %s: %w", deviceName, err)
	}

	return &FFmpegCamera{
		deviceName: deviceName,
		width:      int(w),
		height:     int(h),
	}, nil
}

func (fc *FFmpegCamera) Read() (image.Image, error) {
	cmd := exec.Command("ffmpeg", grabArgs(runtime.GOOS, fc.deviceName)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w. Details: %s", err, stderr.String())
	}

	fc.mu.Lock()
	fc.cmd = cmd
	fc.mu.Unlock()

	buffer := make([]byte, fc.width*fc.height*bytesPerBGRPixel)
	_, readErr := io.ReadFull(stdout, buffer)
	waitErr := cmd.Wait()

	fc.mu.Lock()
	fc.cmd = nil
	fc.mu.Unlock()

	if readErr != nil {
		return nil, fmt.Errorf("read error: %v. Details: %s", readErr, stderr.String())
	}

	if waitErr != nil {
		return nil, fmt.Errorf("ffmpeg exited: %w. Details: %s", waitErr, stderr.String())
	}

	return BGRToRGBA(buffer, fc.width, fc.height)
}

func (fc *FFmpegCamera) Close() error {
	fc.closeOnce.Do(func() {
		fc.mu.Lock()
		defer fc.mu.Unlock()

		if fc.cmd != nil && fc.cmd.Process != nil {
			fc.cmd.Process.Kill()
		}
	})

	return nil
}

// defaultDeviceName maps a device index to an ffmpeg input. dshow has no
// numeric devices, so on windows the index selects from ListCameras.
func defaultDeviceName(goos string, index int) (string, error) {
	if goos != "windows" {
		return fmt.Sprintf("/dev/video%d", index), nil
	}

	cameras, err := ListCameras()
	if err != nil {
		return "", err
	}

	if index < 0 || index >= len(cameras) {
		return "", fmt.Errorf("no camera with index %d (found %d)", index, len(cameras))
	}

	return cameras[index], nil
}

func inputFormat(goos string) string {
	if goos == "windows" {
		return "dshow"
	}
	return "v4l2"
}

func inputName(goos, deviceName string) string {
	if goos == "windows" && !strings.HasPrefix(deviceName, "video=") {
		return "video=" + deviceName
	}
	return deviceName
}

func grabArgs(goos, deviceName string) []string {
	return []string{
		"-v", "error",
		"-f", inputFormat(goos),
		"-i", inputName(goos, deviceName),
		"-frames:v", "1",
		"-f", "image2pipe",
		"-pix_fmt", "bgr24",
		"-vcodec", "rawvideo",
		"-",
	}
}

type probeData struct {
	Streams []struct {
		Width  uint16 `json:"width"`
		Height uint16 `json:"height"`
	} `json:"streams"`
}

func probeDeviceDimensions(deviceName string) (uint16, uint16, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-f", inputFormat(runtime.GOOS),
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		inputName(runtime.GOOS, deviceName),
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, 0, err
	}

	return parseProbe(output)
}

func parseProbe(output []byte) (uint16, uint16, error) {
	var data probeData
	if err := json.Unmarshal(output, &data); err != nil {
		return 0, 0, err
	}

	if len(data.Streams) == 0 {
		return 0, 0, fmt.Errorf("no video streams found")
	}

	w, h := data.Streams[0].Width, data.Streams[0].Height
	if w == 0 || h == 0 {
		return 0, 0, fmt.Errorf("invalid frame size: %dx%d", w, h)
	}

	return w, h, nil
}

var dshowVideoDevice = regexp.MustCompile(`"([^"]+)"\s+\(video\)`)

func parseDShowDevices(output string) []string {
	var cameras []string

	seen := make(map[string]bool)
	for _, m := range dshowVideoDevice.FindAllStringSubmatch(output, -1) {
		name := m[1]
		if name != "dummy" && !seen[name] {
			cameras = append(cameras, name)
			seen[name] = true
		}
	}

	return cameras
}

func ListCameras() ([]string, error) {
	if runtime.GOOS == "windows" {
		cmd := exec.Command("ffmpeg", "-list_devices", "true", "-f", "dshow", "-i", "dummy")
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		// ffmpeg always exits non-zero for the dummy input.
		cmd.Run()

		return parseDShowDevices(stderr.String()), nil
	}

	cameras, err := filepath.Glob("/dev/video*")
	if err != nil {
		return nil, err
	}
	sort.Strings(cameras)

	return cameras, nil
}
