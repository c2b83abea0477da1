package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

type CaptureBackend string

const (
	BackendOpenCV CaptureBackend = "opencv"
	BackendFFmpeg CaptureBackend = "ffmpeg"

	DefaultConfigPath string = "config.json"
)

var BackendsList = [...]string{
	string(BackendOpenCV),
	string(BackendFFmpeg),
}

type CaptureConfig struct {
	Backend     CaptureBackend `json:"backend"`
	DeviceIndex int            `json:"device_index"`
	// DeviceName is the ffmpeg input; empty means /dev/video<DeviceIndex>.
	DeviceName string `json:"device_name"`
}

type WindowConfig struct {
	Width  float32 `json:"width"`
	Height float32 `json:"height"`
}

type Config struct {
	mu sync.RWMutex

	LastDir string        `json:"last_dir"`
	Capture CaptureConfig `json:"capture"`
	Window  WindowConfig  `json:"window"`
}

func (c *Config) GetBackend() CaptureBackend {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Capture.Backend
}

func (c *Config) SetBackend(b CaptureBackend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Capture.Backend = b
}

func (c *Config) GetDeviceIndex() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Capture.DeviceIndex
}

func (c *Config) SetDeviceIndex(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Capture.DeviceIndex = i
}

func (c *Config) GetDeviceName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Capture.DeviceName
}

func (c *Config) SetDeviceName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Capture.DeviceName = name
}

func (c *Config) GetLastDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LastDir
}

func (c *Config) SetLastDir(dir string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastDir = dir
}

func (c *Config) GetWindow() WindowConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Window
}

func (c *Config) SetWindow(w WindowConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Window = w
}

func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	known := false
	for _, b := range BackendsList {
		if CaptureBackend(b) == c.Capture.Backend {
			known = true
			break
		}
	}

	if !known {
		return fmt.Errorf("unknown capture backend %q (expected one of %s)", c.Capture.Backend, strings.Join(BackendsList[:], ", "))
	}

	if c.Capture.DeviceIndex < 0 {
		return fmt.Errorf("device index must not be negative, got %d", c.Capture.DeviceIndex)
	}

	return nil
}

func (c *Config) Save(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	defer f.Close()

	c.mu.RLock()
	defer c.mu.RUnlock()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	return enc.Encode(c)
}

// LoadConfigFile never fails: a missing or broken file yields the defaults.
func LoadConfigFile(path string) *Config {
	var cfg *Config = NewDefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return cfg
	}

	defer f.Close()

	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return NewDefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return NewDefaultConfig()
	}

	return cfg
}

func NewDefaultConfig() *Config {
	return &Config{
		Capture: CaptureConfig{
			Backend:     BackendOpenCV,
			DeviceIndex: 0,
		},
		Window: WindowConfig{Width: 1200, Height: 700},
	}
}
