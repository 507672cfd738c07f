package main

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/wallpaper-align/internal/config"
	"github.com/ironsheep/wallpaper-align/internal/logging"
	"github.com/ironsheep/wallpaper-align/internal/pipeline"
	"github.com/ironsheep/wallpaper-align/internal/server"
)

type rootOptions struct {
	configPath string
	logFile    string
	debug      bool

	logCloser io.Closer
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configPath)
}

// closeLog closes the log file opened by the root pre-run hook, if any.
func (o *rootOptions) closeLog() error {
	if o.logCloser == nil {
		return nil
	}
	c := o.logCloser
	o.logCloser = nil
	return c.Close()
}

// execute runs the command tree and closes the log file on every path.
// Cobra skips post-run hooks when RunE fails.
func execute(root *cobra.Command, opts *rootOptions) error {
	err := root.Execute()
	if cerr := opts.closeLog(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("close log file: %w", cerr))
	}
	return err
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "wallpaper-align",
		Short: "Fit a wallpaper to a phone's lock and password screens",
		Long: `wallpaper-align measures how a phone crops and zooms its lock screen
wallpaper, using screenshots of a calibration pattern, and pre-compensates a
source wallpaper so it lines up on the password screen.

Environment variables:
  ` + logging.EnvLogLevel + `=debug    Enable debug logging`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logCloser = logging.Setup(logging.Options{File: opts.logFile, Debug: opts.debug})
			logging.Debugf("wallpaper-align %s (built %s, commit %s)", Version, BuildTime, GitCommit)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultFilename, "Path to the JSON configuration file")
	flags.StringVar(&opts.logFile, "log-file", "", "Write logs to a rotating file instead of stderr")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newPatternCmd(opts),
		newCalibrateCmd(opts),
		newProfileCmd(opts),
		newRunCmd(opts),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

func newPatternCmd(opts *rootOptions) *cobra.Command {
	var popts pipeline.PatternOptions
	cmd := &cobra.Command{
		Use:   "pattern",
		Short: "Generate the calibration pattern",
		Long: `Generate the calibration pattern at the size of input.source (or
--width x --height) and write it to output.pattern. Set it as the lock screen
wallpaper, then screenshot the lock screen (input.lockscreen) and the password
screen (input.password).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			res, err := pipeline.Pattern(cfg, popts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pattern %dx%d (border %d px) written to %s\n",
				res.Width, res.Height, res.Border, cfg.Output.Pattern)
			return nil
		},
	}
	cmd.Flags().IntVar(&popts.Width, "width", 0, "Pattern width (requires --height)")
	cmd.Flags().IntVar(&popts.Height, "height", 0, "Pattern height (requires --width)")
	cmd.MarkFlagsRequiredTogether("width", "height")
	return cmd
}

func newCalibrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "calibrate",
		Short: "Solve the device crop and write the adjusted source wallpaper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			res, err := pipeline.Calibrate(cfg)
			if err != nil {
				return err
			}
			printCalibrate(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

// profileFlags binds the profile options shared by the profile and run
// commands.
type profileFlags struct {
	opts       pipeline.ProfileOptions
	sampleArea []int
	offsetX    int
	offsetY    int
}

func (f *profileFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.opts.Tint, "tint", 0, "Tint percentage to apply (0-100)")
	fs.BoolVar(&f.opts.AutoTint, "auto-tint", false, "Detect the tint from the marker screenshot")
	fs.IntSliceVar(&f.sampleArea, "sample-area", []int{200, 200, 400, 400}, "Tint sample area x1,y1,x2,y2")
	fs.BoolVar(&f.opts.ExportMask, "export-mask", false, "Also write the mask to output.mask_layer")
	fs.BoolVar(&f.opts.Circle, "circle", false, "Use a circular mask")
	fs.IntVar(&f.opts.MaskScale, "mask-scale", 100, "Mask size in percent of the detected hole")
	fs.IntVar(&f.offsetX, "offset-x", 0, "Horizontal offset of the mask centre in pixels")
	fs.IntVar(&f.offsetY, "offset-y", 0, "Vertical offset of the mask centre in pixels")
}

func (f *profileFlags) options() (pipeline.ProfileOptions, error) {
	if len(f.sampleArea) != 4 {
		return pipeline.ProfileOptions{}, fmt.Errorf("--sample-area needs 4 values x1,y1,x2,y2, got %d", len(f.sampleArea))
	}
	if f.opts.MaskScale <= 0 {
		return pipeline.ProfileOptions{}, fmt.Errorf("--mask-scale must be positive, got %d", f.opts.MaskScale)
	}
	opts := f.opts
	opts.SampleArea = image.Rect(f.sampleArea[0], f.sampleArea[1], f.sampleArea[2], f.sampleArea[3])
	opts.Offset = image.Pt(f.offsetX, f.offsetY)
	return opts, nil
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	flags := &profileFlags{}
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Cut the visible region out of the adjusted wallpaper",
		Long: `Find the black hole in the marker screenshot (input.marker, or
input.password when unset), mask output.source_cropped with it, apply the tint
and write output.result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := flags.options()
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			res, err := pipeline.Profile(cfg, popts)
			if err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), res)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	flags := &profileFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Calibrate and profile in one pass",
		Long: `Run calibrate and profile back to back. No file is written unless both
stages succeed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := flags.options()
			if err != nil {
				return err
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			res, err := pipeline.Run(cfg, popts)
			if err != nil {
				return err
			}
			printCalibrate(cmd.OutOrStdout(), res.Calibrate)
			printProfile(cmd.OutOrStdout(), res.Profile)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server on stdin/stdout",
		Long: `Serve the calibration tools over the MCP protocol (JSON-RPC 2.0, one
message per line). Configure it in your MCP client; logs go to stderr or
--log-file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.Debugf("MCP server %s starting", Version)
			return server.New(Version).Serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "wallpaper-align %s\n", Version)
			fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		},
	}
}

func printCalibrate(w io.Writer, res *pipeline.CalibrateResult) {
	fmt.Fprintf(w, "reference edges: %s\n", res.Reference)
	fmt.Fprintf(w, "target edges:    %s\n", res.Target)
	fmt.Fprintf(w, "crop box:        %s\n", res.Box)
	for _, f := range res.Files {
		fmt.Fprintf(w, "wrote %s\n", f)
	}
}

func printProfile(w io.Writer, res *pipeline.ProfileResult) {
	fmt.Fprintf(w, "mask box: %v\n", res.MaskBox)
	fmt.Fprintf(w, "tint:     %.2f%%\n", res.Tint)
	fmt.Fprintf(w, "result:   %dx%d\n", res.Width, res.Height)
	for _, f := range res.Files {
		fmt.Fprintf(w, "wrote %s\n", f)
	}
}
