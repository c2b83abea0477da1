package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"imgproc/internal/config"
	"imgproc/internal/models"
	"imgproc/internal/ui/cwidget"
	"imgproc/processing/capture"
	"imgproc/processing/engine"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const (
	loadingCameras = "Loading cameras..."
	noCameras      = "No cameras found"
)

type ImageApp struct {
	fyneApp fyne.App
	mainWin fyne.Window

	config     *config.Config
	configPath string
	engine     *engine.Engine

	imageCanvas   *canvas.Image
	statusLabel   *widget.Label
	channelSelect *widget.Select
	widthInput    *cwidget.Input[int]
	heightInput   *cwidget.Input[int]
}

func CreateApp(e *engine.Engine, cfg *config.Config, configPath string) *ImageApp {
	a := app.New()
	w := a.NewWindow("Image Processor")

	win := cfg.GetWindow()
	w.Resize(fyne.NewSize(win.Width, win.Height))

	return &ImageApp{
		fyneApp:    a,
		mainWin:    w,
		engine:     e,
		config:     cfg,
		configPath: configPath,
	}
}

func (a *ImageApp) Run() {
	a.imageCanvas = canvas.NewImageFromImage(nil)
	a.imageCanvas.FillMode = canvas.ImageFillOriginal
	a.imageCanvas.ScaleMode = canvas.ImageScalePixels

	a.statusLabel = widget.NewLabel("No image loaded")

	a.channelSelect = widget.NewSelect(models.ColorModesList[:], nil)
	a.channelSelect.SetSelected(string(models.ModeRGB))

	a.widthInput = cwidget.NewDimensionInput("Width", "Enter integer", 0, nil)
	a.heightInput = cwidget.NewDimensionInput("Height", "Enter integer", 0, nil)
	a.widthInput.OnSubmitted = func(int) { a.resizeImage() }
	a.heightInput.OnSubmitted = func(int) { a.resizeImage() }

	settingsLabel := widget.NewLabelWithStyle("Image", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	sidebar := container.NewVBox(
		settingsLabel,
		widget.NewSeparator(),
		widget.NewButtonWithIcon("Load Image", theme.FolderOpenIcon(), a.loadImage),
		widget.NewButtonWithIcon("Capture Image", theme.MediaPhotoIcon(), a.captureImage),
		widget.NewSeparator(),
		a.cameraSettings(),
		widget.NewSeparator(),
		widget.NewLabel("Select Color Channel:"),
		a.channelSelect,
		widget.NewButton("Apply Channel", a.applyChannel),
		widget.NewSeparator(),
		widget.NewLabel("Resize Image:"),
		a.widthInput,
		a.heightInput,
		widget.NewButton("Resize Image", a.resizeImage),
	)

	imageContainer := container.NewBorder(
		a.statusLabel,
		nil, nil, nil,
		container.NewScroll(a.imageCanvas),
	)

	split := container.NewHSplit(
		container.NewVScroll(container.NewPadded(sidebar)),
		container.NewPadded(imageContainer),
	)
	split.SetOffset(0.25)

	a.mainWin.SetContent(split)

	a.mainWin.SetCloseIntercept(func() {
		size := a.mainWin.Canvas().Size()
		a.config.SetWindow(config.WindowConfig{Width: size.Width, Height: size.Height})

		if err := a.config.Save(a.configPath); err != nil {
			fyne.LogError("saving config", err)
		}
		a.mainWin.Close()
	})

	a.mainWin.CenterOnScreen()
	a.mainWin.ShowAndRun()
}

func (a *ImageApp) loadImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWin)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		a.config.SetLastDir(filepath.Dir(path))

		if err := a.engine.Load(path); err != nil {
			dialog.ShowError(err, a.mainWin)
			return
		}

		a.imageReplaced()
	}, a.mainWin)

	fd.SetFilter(storage.NewExtensionFileFilter(engine.Extensions))

	if dir := a.config.GetLastDir(); dir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			fd.SetLocation(lister)
		}
	}

	fd.Show()
}

func (a *ImageApp) captureImage() {
	open, err := capture.NewOpener(a.config)
	if err != nil {
		dialog.ShowError(err, a.mainWin)
		return
	}

	a.engine.SetOpener(open)

	if err := a.engine.Capture(a.config.GetDeviceIndex()); err != nil {
		dialog.ShowError(err, a.mainWin)
		return
	}

	a.imageReplaced()
}

func (a *ImageApp) applyChannel() {
	if err := a.engine.ApplyChannelName(a.channelSelect.Selected); err != nil {
		dialog.ShowError(err, a.mainWin)
		return
	}

	a.refreshImage()
}

func (a *ImageApp) resizeImage() {
	if err := a.engine.Resize(a.widthInput.Text(), a.heightInput.Text()); err != nil {
		dialog.ShowError(err, a.mainWin)
		return
	}

	a.refreshImage()
}

// imageReplaced resets the controls after a load or capture.
func (a *ImageApp) imageReplaced() {
	size := a.engine.Size()

	a.widthInput.SetText(strconv.Itoa(size.X))
	a.heightInput.SetText(strconv.Itoa(size.Y))
	a.channelSelect.SetSelected(string(a.engine.Mode()))

	a.refreshImage()
}

func (a *ImageApp) refreshImage() {
	cur := a.engine.Current()

	a.imageCanvas.Image = cur
	a.imageCanvas.SetMinSize(fyne.NewSize(float32(cur.Rect.Dx()), float32(cur.Rect.Dy())))
	a.imageCanvas.Refresh()

	a.statusLabel.SetText(a.formatStatus())
}

func (a *ImageApp) formatStatus() string {
	cur := a.engine.Current()
	return fmt.Sprintf("%dx%d · %s", cur.Rect.Dx(), cur.Rect.Dy(), a.engine.Mode())
}

func (a *ImageApp) cameraSettings() fyne.CanvasObject {
	available := capture.Backends()

	backendSelect := widget.NewSelect(available, func(s string) {
		a.config.SetBackend(config.CaptureBackend(s))
	})
	backendSelect.SetSelected(string(a.config.GetBackend()))

	deviceSelect := widget.NewSelect([]string{loadingCameras}, nil)
	deviceSelect.SetSelected(loadingCameras)
	deviceSelect.Disable()

	go func() {
		devices, err := capture.ListCameras()

		fyne.Do(func() {
			switch {
			case err != nil:
				dialog.ShowError(err, a.mainWin)
				deviceSelect.Options = []string{"Error listing cameras"}
			case len(devices) == 0:
				deviceSelect.Options = []string{noCameras}
			default:
				deviceSelect.Options = devices
				deviceSelect.OnChanged = func(s string) {
					a.config.SetDeviceName(s)
					a.config.SetDeviceIndex(deviceIndex(s, deviceSelect.SelectedIndex()))
				}
				deviceSelect.Enable()

				selected := devices[0]
				if name := a.config.GetDeviceName(); name != "" {
					selected = name
				} else if i := a.config.GetDeviceIndex(); i < len(devices) {
					selected = devices[i]
				}
				deviceSelect.SetSelected(selected)
			}
			deviceSelect.Refresh()
		})
	}()

	return container.NewVBox(
		widget.NewLabel("Capture Backend:"),
		backendSelect,
		widget.NewLabel("Select Camera:"),
		deviceSelect,
	)
}

// deviceIndex maps a listed camera to the index OpenCV expects: the
// number of /dev/videoN on linux, the listing position elsewhere.
func deviceIndex(name string, pos int) int {
	if n, ok := strings.CutPrefix(name, "/dev/video"); ok {
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return pos
}
