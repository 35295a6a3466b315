package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/dangdungcntt/go-twigpad"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default twigpad.toml",
	Long: `Write the default configuration to the config file (twigpad.toml
unless --config says otherwise). With --pad, also write the starter pad.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite existing files")
	initCmd.Flags().String("pad", "", "also write the starter pad to this file")
}

func runInit(cmd *cobra.Command, _ []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	padPath, err := cmd.Flags().GetString("pad")
	if err != nil {
		return err
	}
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return err
	}

	if err := refuseExisting(configPath, force); err != nil {
		return err
	}
	if err := writeConfig(configPath, defaultCLIConfig()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), okColor.Sprint("created"), configPath)

	if padPath == "" {
		return nil
	}
	if err := refuseExisting(padPath, force); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := twigpad.DefaultPad().Encode(&buf); err != nil {
		return err
	}
	if err := atomic.WriteFile(padPath, &buf); err != nil {
		return fmt.Errorf("write %s: %w", padPath, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), okColor.Sprint("created"), padPath)
	return nil
}

func refuseExisting(path string, force bool) error {
	if force {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s exists, use --force to overwrite", path)
	}
	return nil
}
