// OttoCoach is a terminal cooking coach: it plans a recipe from what you
// have, then walks you through it with one countdown per step.
//
// Usage:
//
//	ottocoach cook --demo vegetable-stir-fry
//	ottocoach cook --ingredients "chicken, rice, broccoli" --goal gain
//	ottocoach recipes
//	ottocoach fix-meal "pizza and soda" --goal loss
//	ottocoach doctor "I feel tired all the time"
//	ottocoach mindful "oatmeal with berries"
package main

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/ottocoach/internal/config"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

var errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f87171"))

var rootCmd = &cobra.Command{
	Use:           "ottocoach",
	Short:         "OttoCoach is a terminal cooking coach with step timers",
	Long:          `OttoCoach generates recipes from the ingredients you have and runs an independent countdown for every step while you cook.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config-dir", ".", "directory holding ottocoach.yaml and .env")
	rootCmd.PersistentFlags().String("log-level", "", "off, normal, or verbose (overrides config)")
	rootCmd.PersistentFlags().String("log-file", "", "file to write logs to, \"stderr\" for the console (overrides config)")
}

// env is what every sub-command needs once flags and config are resolved.
type env struct {
	fs     afero.Fs
	cfg    *config.Config
	log    *logger.Logger
	closer io.Closer // log file, nil when logging to stderr
}

func (e *env) Close() {
	if e.closer != nil {
		e.closer.Close()
	}
}

// setup loads configuration and opens the log. Command-line flags win over
// the config file and environment.
func setup(cmd *cobra.Command) (*env, error) {
	dir, err := cmd.Flags().GetString("config-dir")
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	cfg, err := config.Load(fs, dir)
	if err != nil {
		return nil, err
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if file, _ := cmd.Flags().GetString("log-file"); file != "" {
		cfg.LogFile = file
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	e := &env{fs: fs, cfg: cfg}

	// Logs go to a file by default so the terminal UI stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.LogFile != "" && cfg.LogFile != "stderr" {
		if d := filepath.Dir(cfg.LogFile); d != "" && d != "." {
			_ = os.MkdirAll(d, 0o755)
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", cfg.LogFile, err)
		} else {
			logOut = f
			e.closer = f
		}
	}

	// Third-party libraries that use the standard log package end up in
	// the same place.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	e.log = logger.New(level, logOut)
	return e, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+friendlyError(err))
		os.Exit(1)
	}
}
