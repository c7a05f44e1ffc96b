package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/psdatlas/pkg/config"
	"github.com/matzehuels/psdatlas/pkg/pipeline"
	"github.com/matzehuels/psdatlas/pkg/psdb"
	"github.com/matzehuels/psdatlas/pkg/source"
)

// packOpts holds the command-line flags for the pack command.
type packOpts struct {
	output        string // base path for output files
	padding       int    // gap around each region
	coords        string // "top-left" or "bottom-left"
	formats       string // comma-separated output formats
	canvasWidth   int    // coordinate remapping width (0 = document)
	canvasHeight  int    // coordinate remapping height (0 = document)
	includeHidden bool   // pack hidden layers too
	refresh       bool   // bypass cache reads
	noCache       bool   // disable the cache entirely
}

// outputSuffix maps each format to the file suffix appended to the base path.
var outputSuffix = map[string]string{
	pipeline.FormatPNG:   ".png",
	pipeline.FormatBin:   ".bin",
	pipeline.FormatJSON:  ".json",
	pipeline.FormatDebug: "_debug.png",
}

// packCommand creates the pack command.
func (c *CLI) packCommand() *cobra.Command {
	var opts packOpts

	cmd := &cobra.Command{
		Use:   "pack <input>",
		Short: "Pack a layered document into an atlas and PSDB binary",
		Long: `Pack a layered document into a sprite atlas.

The input is a directory containing layers.toml or layers.json, a manifest
file, a directory of images, or a single image. Outputs are written next to
the base path given by --output:

  <base>.png        atlas image
  <base>.bin        PSDB region table
  <base>.json       JSON descriptor
  <base>_debug.png  atlas with region outlines`,
		Example: `  psdatlas pack hero/
  psdatlas pack hero/layers.toml -o build/hero --coords bottom-left -f png,bin,json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			popts, err := opts.pipelineOptions(cmd, cfg, args[0])
			if err != nil {
				return err
			}
			return c.runPack(cmd.Context(), cfg, popts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: input name in the current directory)")
	cmd.Flags().IntVar(&opts.padding, "padding", 0, "pixels of padding around each region (default from config, 2)")
	cmd.Flags().StringVar(&opts.coords, "coords", "", "coordinate system: top-left, bottom-left (default from config)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): png, bin, json, debug (comma-separated)")
	cmd.Flags().IntVar(&opts.canvasWidth, "canvas-width", 0, "canvas width for coordinate remapping (default: document width)")
	cmd.Flags().IntVar(&opts.canvasHeight, "canvas-height", 0, "canvas height for coordinate remapping (default: document height)")
	cmd.Flags().BoolVar(&opts.includeHidden, "include-hidden", false, "pack hidden layers too")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached layouts and artifacts")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// pipelineOptions merges flags over config values. Flags win only when set.
func (o packOpts) pipelineOptions(cmd *cobra.Command, cfg config.Config, input string) (pipeline.Options, error) {
	padding := cfg.Padding
	if cmd.Flags().Changed("padding") {
		padding = o.padding
	}

	cs := cfg.CoordinateSystem
	if o.coords != "" {
		parsed, err := psdb.ParseCoordinateSystem(o.coords)
		if err != nil {
			return pipeline.Options{}, err
		}
		cs = parsed
	}

	formats := cfg.Formats
	if o.formats != "" {
		parsed, err := pipeline.ParseFormats(o.formats)
		if err != nil {
			return pipeline.Options{}, err
		}
		formats = parsed
	}

	base := basePath(o.output, input)
	return pipeline.Options{
		Input:            input,
		IncludeHidden:    o.includeHidden,
		Padding:          &padding,
		Refresh:          o.refresh,
		CoordinateSystem: cs,
		CanvasWidth:      o.canvasWidth,
		CanvasHeight:     o.canvasHeight,
		Formats:          formats,
		ImageName:        filepath.Base(base) + outputSuffix[pipeline.FormatPNG],
	}, nil
}

// runPack executes the pipeline and writes every artifact next to the base path.
func (c *CLI) runPack(ctx context.Context, cfg config.Config, popts pipeline.Options, opts packOpts) error {
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Packing "+popts.Input+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		spinner.StopWithError("Pack failed")
		return err
	}
	spinner.StopWithSuccess("Packed " + StyleValue.Render(result.Document.Name))

	base := basePath(opts.output, popts.Input)
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	prog := newProgress(c.Logger)
	var written []string
	for _, format := range popts.Formats {
		path := base + outputSuffix[format]
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	prog.done(fmt.Sprintf("Wrote %d files", len(written)))

	l := result.Layout
	fmt.Println(atlasStats(len(l.Regions), l.Width, l.Height, result.Stats.Coverage,
		result.CacheInfo.PackHit && result.CacheInfo.RenderHit))
	if result.JobID != "" {
		printDetail("job %s", result.JobID)
	}
	for _, path := range written {
		printFile(path)
	}
	if bin := base + outputSuffix[pipeline.FormatBin]; popts.Wants(pipeline.FormatBin) {
		printNewline()
		printNextStep("Inspect the region table", appName+" inspect "+bin)
	}
	return nil
}

// basePath derives the output base path.
// An explicit output has any known output extension stripped; otherwise the
// input's name is used in the current directory. A manifest input is named
// after its directory.
func basePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		switch strings.ToLower(ext) {
		case ".png", ".bin", ".json":
			return strings.TrimSuffix(output, ext)
		}
		return output
	}

	clean := filepath.Clean(input)
	name := filepath.Base(clean)
	if source.IsManifest(name) {
		name = filepath.Base(filepath.Dir(clean))
	} else {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "atlas"
	}
	return name
}
