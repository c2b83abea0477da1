package main

import (
	"fmt"
	"image"
	"io"

	"imgproc/processing/engine"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <image>",
	Short: "Load an image and report its size and mean color, optionally after a transform",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().String("channel", "", "Isolate a channel first (Red, Green, Blue, RGB)")
	infoCmd.Flags().String("width", "", "Resize to this width (requires --height)")
	infoCmd.Flags().String("height", "", "Resize to this height (requires --width)")
	infoCmd.MarkFlagsRequiredTogether("width", "height")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	channel, _ := cmd.Flags().GetString("channel")
	width, _ := cmd.Flags().GetString("width")
	height, _ := cmd.Flags().GetString("height")

	e := engine.NewEngine(nil)
	if err := e.Load(args[0]); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printBuffer(out, "Original", e.Original())

	if channel != "" {
		if err := e.ApplyChannelName(channel); err != nil {
			return err
		}
	}

	if width != "" {
		if err := e.Resize(width, height); err != nil {
			return err
		}
	}

	printBuffer(out, "Current ", e.Current())
	fmt.Fprintf(out, "Mode:     %s\n", e.Mode())

	return nil
}

func printBuffer(w io.Writer, name string, img *image.RGBA) {
	r, g, b := meanColor(img)
	fmt.Fprintf(w, "%s: %dx%d, mean RGB (%.1f, %.1f, %.1f)\n", name, img.Rect.Dx(), img.Rect.Dy(), r, g, b)
}

func meanColor(img *image.RGBA) (r, g, b float64) {
	n := len(img.Pix) / 4
	if n == 0 {
		return 0, 0, 0
	}

	var sr, sg, sb uint64
	for i := 0; i < len(img.Pix); i += 4 {
		sr += uint64(img.Pix[i+0])
		sg += uint64(img.Pix[i+1])
		sb += uint64(img.Pix[i+2])
	}

	return float64(sr) / float64(n), float64(sg) / float64(n), float64(sb) / float64(n)
}
