package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
)

// readInput reads the file named by the first argument, or stdin when
// there is none or it is "-".
func readInput(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	return readFile(args[0])
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// writeOutput writes to path atomically, or to stdout when path is empty or "-".
func writeOutput(stdout io.Writer, path, content string) error {
	if path == "" || path == "-" {
		if _, err := io.WriteString(stdout, content); err != nil {
			return err
		}
		if !strings.HasSuffix(content, "\n") {
			_, err := io.WriteString(stdout, "\n")
			return err
		}
		return nil
	}
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
