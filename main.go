package main

import (
	"fmt"
	"log"
	"os"

	"imgproc/internal/config"
	"imgproc/internal/ui"
	_ "imgproc/processing/capture/opencv"
	"imgproc/processing/engine"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "imgproc",
	Short: "Load or capture an image, isolate a color channel and resize it",
	Args:  cobra.NoArgs,
	RunE:  runGUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "path of the JSON config file")
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg := config.LoadConfigFile(configPath)
	log.Printf("config %s: capture backend %s, device %d", configPath, cfg.GetBackend(), cfg.GetDeviceIndex())

	app := ui.CreateApp(engine.NewEngine(nil), cfg, configPath)

	app.Run()

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
