package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kozaktomas/wallproof/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "wallproof",
	Short: "Print proofs for custom-size wallpaper orders",
	Long: `Wallproof renders a one-page A4 landscape PDF proof for a stored
wallpaper configuration: the cropped print preview with bleed and wall
frames, dimension labels, measurement and price tables and a quality
disclaimer. It serves proofs over HTTP and renders them offline.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// configureLogging mirrors the standard logger into a rotated file when
// LOG_FILE is set.
func configureLogging(cfg config.LogConfig) {
	if cfg.File == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		fmt.Printf("Warning: cannot create log directory, logging to stderr only: %v\n", err)
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}))
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
}
