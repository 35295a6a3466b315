package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "twigpad",
	Short: "Template-safe HTML codec and fault-tolerant Twig renderer",
	Long: `twigpad escapes, restores and re-indents HTML that carries Twig/Jinja
directives without touching the directives, and renders templates against a
JSON context, stubbing unknown functions, filters and tests.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

// state shared by the commands, set up before any of them runs
var app struct {
	cfg    *cliConfig
	logger *slog.Logger
}

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
	noteColor = color.New(color.FgCyan)
)

func main() {
	rootCmd.AddCommand(serializeCmd)
	rootCmd.AddCommand(deserializeCmd)
	rootCmd.AddCommand(beautifyCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(initCmd)

	rootCmd.PersistentFlags().String("config", defaultConfigFile, "config file")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error), overrides the config file")
	rootCmd.PersistentFlags().String("color", "", "colorize output (auto|on|off), overrides the config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failColor.Sprint("error:"), err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return err
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	if lvl, _ := flags.GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if c, _ := flags.GetString("color"); c != "" {
		cfg.Color = c
	}

	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	switch cfg.Color {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(os.Stderr)
	default:
		return fmt.Errorf("invalid color mode %q (auto|on|off)", cfg.Color)
	}

	app.cfg = cfg
	app.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

// isTerminal reports whether f is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
