package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dangdungcntt/go-twigpad"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a template against a JSON context",
	Long: `Render a template against a JSON context into a complete HTML document.
Input is either a pad file (--pad) or separate files for the template,
context, extension script and head. A failed render still writes its
diagnostic document, then exits with status 1.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("pad", "", "pad file holding template, context, extension and head")
	renderCmd.Flags().String("template", "", "template file")
	renderCmd.Flags().String("context", "", "JSON context file")
	renderCmd.Flags().String("extension", "", "extension script file (YAML)")
	renderCmd.Flags().String("head", "", "head config file (YAML)")
	renderCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	renderCmd.Flags().Bool("watch", false, "render again whenever an input file changes")
}

// renderInputs names the files a render reads.
type renderInputs struct {
	pad, template, context, extension, head string
}

func (in renderInputs) files() []string {
	var files []string
	for _, f := range []string{in.pad, in.template, in.context, in.extension, in.head} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

func (in renderInputs) request(defaultHead twigpad.HeadConfig) (twigpad.Request, error) {
	var req twigpad.Request
	switch {
	case in.pad != "":
		f, err := os.Open(in.pad)
		if err != nil {
			return req, err
		}
		defer f.Close()
		pad, err := twigpad.LoadPad(f)
		if err != nil {
			return req, fmt.Errorf("%s: %w", in.pad, err)
		}
		req = pad.Request()
	case in.template != "":
		req.Head = defaultHead
		var err error
		if req.Template, err = readFile(in.template); err != nil {
			return req, err
		}
		if in.context != "" {
			if req.Context, err = readFile(in.context); err != nil {
				return req, err
			}
		}
		if in.extension != "" {
			if req.Extension, err = readFile(in.extension); err != nil {
				return req, err
			}
		}
	default:
		return req, errors.New("either --pad or --template is required")
	}

	if in.head != "" {
		raw, err := readFile(in.head)
		if err != nil {
			return req, err
		}
		var head twigpad.HeadConfig
		if err := yaml.Unmarshal([]byte(raw), &head); err != nil {
			return req, fmt.Errorf("%s: %w", in.head, err)
		}
		req.Head = head
	}
	return req, nil
}

func runRender(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	var in renderInputs
	for name, dst := range map[string]*string{
		"pad": &in.pad, "template": &in.template, "context": &in.context,
		"extension": &in.extension, "head": &in.head,
	} {
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	output, err := flags.GetString("output")
	if err != nil {
		return err
	}
	watch, err := flags.GetBool("watch")
	if err != nil {
		return err
	}
	if in.pad != "" && in.template != "" {
		return errors.New("--pad and --template cannot be used together")
	}

	r := twigpad.NewRenderer(
		twigpad.WithConfig(app.cfg.Render),
		twigpad.WithLogger(app.logger),
	)
	renderOnce := func() error {
		req, err := in.request(app.cfg.Head)
		if err != nil {
			return err
		}
		out := r.Render(req)
		if err := writeOutput(cmd.OutOrStdout(), output, out.Document); err != nil {
			return err
		}
		if !out.OK {
			return fmt.Errorf("render failed: %w", out.Err)
		}
		if out.Retried {
			app.logger.Info("rendered with stubs", "stubbed", out.Stubbed.String())
		}
		return nil
	}

	if !watch {
		return renderOnce()
	}

	report := func() {
		if err := renderOnce(); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), failColor.Sprint("failed:"), err)
			return
		}
		fmt.Fprintln(cmd.ErrOrStderr(), okColor.Sprint("rendered"), strings.Join(in.files(), ", "))
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report()
	return watchFiles(ctx, in.files(), app.logger, func(path string) {
		app.logger.Info("input changed", "path", path)
		report()
	})
}
