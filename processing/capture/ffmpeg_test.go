package capture

import (
	"testing"

	"imgproc/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrabArgs(t *testing.T) {
	args := grabArgs("linux", "/dev/video1")
	assert.Equal(t, []string{
		"-v", "error",
		"-f", "v4l2",
		"-i", "/dev/video1",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-pix_fmt", "bgr24",
		"-vcodec", "rawvideo",
		"-",
	}, args)

	args = grabArgs("windows", "Integrated Camera")
	assert.Contains(t, args, "dshow")
	assert.Contains(t, args, "video=Integrated Camera")
}

func TestInputName(t *testing.T) {
	assert.Equal(t, "video=Cam", inputName("windows", "Cam"))
	assert.Equal(t, "video=Cam", inputName("windows", "video=Cam"))
	assert.Equal(t, "/dev/video0", inputName("linux", "/dev/video0"))
}

func TestDefaultDeviceName(t *testing.T) {
	name, err := defaultDeviceName("linux", 2)
	require.NoError(t, err)
	assert.Equal(t, "/dev/video2", name)
}

func TestParseProbe(t *testing.T) {
	w, h, err := parseProbe([]byte(`{"programs":[],"streams":[{"width":1280,"height":720}]}`))
	require.NoError(t, err)
	assert.Equal(t, uint16(1280), w)
	assert.Equal(t, uint16(720), h)

	_, _, err = parseProbe([]byte(`{"streams":[]}`))
	assert.Error(t, err)

	_, _, err = parseProbe([]byte(`{"streams":[{"width":0,"height":720}]}`))
	assert.Error(t, err)

	_, _, err = parseProbe([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseDShowDevices(t *testing.T) {
	out := `[dshow @ 0000] "Integrated Camera" (video)
[dshow @ 0000]   Alternative name "@device_pnp_\\?\usb"
[dshow @ 0000] "Microphone Array" (audio)
[dshow @ 0000] "OBS Virtual Camera" (video)
[dshow @ 0000] "Integrated Camera" (video)
dummy: Immediate exit requested`

	assert.Equal(t, []string{"Integrated Camera", "OBS Virtual Camera"}, parseDShowDevices(out))
	assert.Empty(t, parseDShowDevices(""))
}

func TestNewOpener(t *testing.T) {
	assert.Contains(t, Backends(), string(config.BackendFFmpeg))

	cfg := config.NewDefaultConfig()
	cfg.SetBackend(config.BackendFFmpeg)
	open, err := NewOpener(cfg)
	require.NoError(t, err)
	assert.NotNil(t, open)

	cfg.SetBackend("directshow")
	_, err = NewOpener(cfg)
	assert.Error(t, err)
}

func TestRegisterTwicePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(config.BackendFFmpeg, func(*config.Config) OpenFunc { return nil })
	})
}
