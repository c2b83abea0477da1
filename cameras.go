package main

import (
	"fmt"
	"strings"

	"imgproc/processing/capture"

	"github.com/spf13/cobra"
)

var camerasCmd = &cobra.Command{
	Use:   "cameras",
	Short: "List capture devices and available capture backends",
	Args:  cobra.NoArgs,
	RunE:  runCameras,
}

func init() {
	rootCmd.AddCommand(camerasCmd)
}

func runCameras(cmd *cobra.Command, args []string) error {
	cameras, err := capture.ListCameras()
	if err != nil {
		return fmt.Errorf("listing cameras: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Backends: %s\n", strings.Join(capture.Backends(), ", "))

	if len(cameras) == 0 {
		fmt.Fprintln(out, "No cameras found")
		return nil
	}

	for i, camera := range cameras {
		fmt.Fprintf(out, "%d: %s\n", i, camera)
	}

	return nil
}
