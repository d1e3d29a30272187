package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/causeway/pkg/pipeline"
	"github.com/matzehuels/causeway/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string // output file; empty writes DOT to stdout or <model>.<format>
	format  string // dot, svg, png or pdf; empty means the output extension or svg
	noCache bool
	refresh bool
	pipeline.RenderOptions
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts
	cmd := &cobra.Command{
		Use:   "render <model>",
		Short: "Draw the causal graph of a model",
		Long: `Draw the causal graph with Graphviz. Latent variables are dashed and query
variables can be highlighted with --on, --doing, --knowing and --adjust.`,
		Example: `  causeway render smoking.yaml -o smoking.svg --on cancer --doing smoking --adjust tar
  causeway render smoking.yaml --format dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, png, pdf")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "list each variable's labels")
	cmd.Flags().BoolVar(&opts.HideLatents, "hide-latents", false, "draw observed variables only")
	cmd.Flags().StringSliceVar(&opts.On, "on", nil, "highlight query variables")
	cmd.Flags().StringSliceVar(&opts.Doing, "doing", nil, "highlight intervened variables")
	cmd.Flags().StringSliceVar(&opts.Knowing, "knowing", nil, "highlight conditioning variables")
	cmd.Flags().StringSliceVar(&opts.Adjust, "adjust", nil, "highlight an adjustment set")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "redraw and overwrite a cached diagram")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	format, err := resolveFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	opts.Format = format

	r := c.newRunner(ctx, opts.noCache)
	defer r.Close()

	m, err := loadModel(ctx, r, input)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, cmd.ErrOrStderr(), "Rendering "+filepath.Base(input)+"...")
	spin.Start()
	data, hit, err := r.RenderWithCacheInfo(ctx, m, opts.RenderOptions, opts.refresh)
	spin.Stop()
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" && format == render.FormatDOT {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if output == "" {
		output = basePath(input) + "." + string(format)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	prog.done("Rendered " + output)

	w := cmd.OutOrStdout()
	printSuccess(w, "Rendered %s", m.Name)
	printFile(w, output)
	printStatus(w, hit, string(format))
	return nil
}

// resolveFormat picks the explicit format, else the output extension, else SVG.
func resolveFormat(format, output string) (render.Format, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(output), ".")
	}
	if format == "" {
		return render.FormatSVG, nil
	}
	return render.ParseFormat(format)
}

// basePath strips the extension from the model path.
func basePath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input))
}
