package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dangdungcntt/go-twigpad"
)

var serializeCmd = &cobra.Command{
	Use:   "serialize [file]",
	Short: "Minify HTML and escape it into a string literal",
	Long: `Minify HTML and escape it into a string literal. Template directives
are copied unescaped. Reads stdin when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSerialize,
}

var deserializeCmd = &cobra.Command{
	Use:   "deserialize [file]",
	Short: "Turn an escaped string literal back into HTML",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDeserialize,
}

var beautifyCmd = &cobra.Command{
	Use:   "beautify [file]",
	Short: "Re-indent HTML, leaving directives, pre and textarea untouched",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBeautify,
}

func init() {
	for _, cmd := range []*cobra.Command{serializeCmd, deserializeCmd, beautifyCmd} {
		cmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	}
	serializeCmd.Flags().Bool("stats", false, "print sizes to stderr")
	beautifyCmd.Flags().Bool("literal", false, "input is an escaped literal")
	beautifyCmd.Flags().Int("indent", -1, "spaces per level (default from config)")
}

func runSerialize(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	withStats, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return err
	}
	input, err := readInput(args)
	if err != nil {
		return err
	}

	literal, stats := twigpad.SerializeWithStats(input)
	app.logger.Debug("serialized",
		"original", stats.OriginalSize,
		"minified", stats.MinifiedSize,
		"serialized", stats.SerializedSize,
		"directives", stats.Directives)
	if withStats {
		printStats(cmd.ErrOrStderr(), stats)
	}
	return writeOutput(cmd.OutOrStdout(), output, literal)
}

func printStats(w io.Writer, s twigpad.SerializeStats) {
	saved := 0.0
	if s.OriginalSize > 0 {
		saved = 100 * float64(s.OriginalSize-s.MinifiedSize) / float64(s.OriginalSize)
	}
	fmt.Fprintf(w, "%s %s chars\n", noteColor.Sprint("original:  "), humanize.Comma(int64(s.OriginalSize)))
	fmt.Fprintf(w, "%s %s chars (%.1f%% smaller)\n", noteColor.Sprint("minified:  "), humanize.Comma(int64(s.MinifiedSize)), saved)
	fmt.Fprintf(w, "%s %s chars\n", noteColor.Sprint("serialized:"), humanize.Comma(int64(s.SerializedSize)))
	fmt.Fprintf(w, "%s %d\n", noteColor.Sprint("directives:"), s.Directives)
}

func runDeserialize(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	input, err := readInput(args)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), output, twigpad.Deserialize(input))
}

func runBeautify(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	literal, err := cmd.Flags().GetBool("literal")
	if err != nil {
		return err
	}
	indent, err := cmd.Flags().GetInt("indent")
	if err != nil {
		return err
	}
	input, err := readInput(args)
	if err != nil {
		return err
	}

	unit := app.cfg.indentUnit()
	if indent >= 0 {
		unit = strings.Repeat(" ", indent)
	}
	if literal {
		input = twigpad.Deserialize(input)
	}
	return writeOutput(cmd.OutOrStdout(), output, twigpad.BeautifyIndent(input, unit))
}
