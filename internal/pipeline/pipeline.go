package pipeline

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/wallpaper-align/internal/calibration"
	"github.com/ironsheep/wallpaper-align/internal/config"
	"github.com/ironsheep/wallpaper-align/internal/imaging"
	"github.com/ironsheep/wallpaper-align/internal/logging"
	"github.com/ironsheep/wallpaper-align/internal/profile"
)

// DefaultSampleArea is the region of the marker screenshot used for tint
// detection when none is given.
var DefaultSampleArea = image.Rect(200, 200, 400, 400)

// PatternOptions overrides the pattern size. Both must be set to take effect;
// otherwise the size of input.source is used.
type PatternOptions struct {
	Width  int
	Height int
}

func (o PatternOptions) explicit() bool {
	return o.Width > 0 && o.Height > 0
}

// PatternResult describes a generated pattern.
type PatternResult struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Border int      `json:"border"`
	Files  []string `json:"files"`
}

// CalibrateResult describes a solved calibration.
type CalibrateResult struct {
	Width     int                       `json:"width"`
	Height    int                       `json:"height"`
	Reference calibration.EdgeDistances `json:"reference"`
	Target    calibration.EdgeDistances `json:"target"`
	Box       imaging.CropBox           `json:"box"`
	Files     []string                  `json:"files"`

	cropped image.Image
}

// ProfileOptions mirrors the profile command's flags.
type ProfileOptions struct {
	Tint       float64
	AutoTint   bool
	SampleArea image.Rectangle
	ExportMask bool
	Circle     bool
	MaskScale  int
	Offset     image.Point
}

// ProfileResult describes an extracted profile image.
type ProfileResult struct {
	Tint    float64         `json:"tint"`
	MaskBox image.Rectangle `json:"mask_box"`
	Width   int             `json:"width"`
	Height  int             `json:"height"`
	Files   []string        `json:"files"`
}

// RunResult combines the calibrate and profile results of a full run.
type RunResult struct {
	Calibrate *CalibrateResult `json:"calibrate"`
	Profile   *ProfileResult   `json:"profile"`
}

// Pattern generates the calibration pattern and writes it to output.pattern.
func Pattern(cfg *config.Config, opts PatternOptions) (*PatternResult, error) {
	if err := cfg.Validate(config.StagePattern, config.ValidateOptions{ExplicitSize: opts.explicit()}); err != nil {
		return nil, err
	}
	colors, err := cfg.PatternColors()
	if err != nil {
		return nil, err
	}

	width, height := opts.Width, opts.Height
	if !opts.explicit() {
		src, err := imaging.Open(cfg.Input.Source)
		if err != nil {
			return nil, fmt.Errorf("pattern: %w", err)
		}
		width, height = src.Bounds().Dx(), src.Bounds().Dy()
	}

	pattern, err := calibration.GeneratePattern(width, height, colors)
	if err != nil {
		return nil, fmt.Errorf("pattern: %w", err)
	}
	logging.Printf("pattern: %dx%d, border %d", width, height, calibration.BorderSize(width))

	var out outputs
	out.add(cfg.Output.Pattern, pattern)
	if err := out.flush(); err != nil {
		return nil, fmt.Errorf("pattern: %w", err)
	}
	return &PatternResult{
		Width:  width,
		Height: height,
		Border: calibration.BorderSize(width),
		Files:  out.Paths(),
	}, nil
}

// Calibrate measures both pattern screenshots, solves for the device's crop
// box and writes the resized and cropped source wallpaper.
func Calibrate(cfg *config.Config) (*CalibrateResult, error) {
	if err := cfg.Validate(config.StageCalibrate, config.ValidateOptions{}); err != nil {
		return nil, err
	}
	var out outputs
	res, err := calibrate(cfg, &out)
	if err != nil {
		return nil, err
	}
	if err := out.flush(); err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}
	res.Files = out.Paths()
	return res, nil
}

// Profile extracts the visible region from output.source_cropped and writes
// the (optionally tinted) result.
func Profile(cfg *config.Config, opts ProfileOptions) (*ProfileResult, error) {
	if err := cfg.Validate(config.StageProfile, config.ValidateOptions{ExportMask: opts.ExportMask}); err != nil {
		return nil, err
	}
	src, err := imaging.Open(cfg.Output.SourceCropped)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	var out outputs
	res, err := extractProfile(cfg, opts, src, &out)
	if err != nil {
		return nil, err
	}
	if err := out.flush(); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	res.Files = out.Paths()
	return res, nil
}

// Run calibrates and extracts the profile in one pass. Nothing is written
// unless both stages succeed.
func Run(cfg *config.Config, opts ProfileOptions) (*RunResult, error) {
	if err := cfg.Validate(config.StageRun, config.ValidateOptions{ExportMask: opts.ExportMask}); err != nil {
		return nil, err
	}

	var out outputs
	cal, err := calibrate(cfg, &out)
	if err != nil {
		return nil, err
	}
	calibrated := len(out)
	prof, err := extractProfile(cfg, opts, cal.cropped, &out)
	if err != nil {
		return nil, err
	}
	if err := out.flush(); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	paths := out.Paths()
	cal.Files, prof.Files = paths[:calibrated], paths[calibrated:]
	return &RunResult{Calibrate: cal, Profile: prof}, nil
}

func calibrate(cfg *config.Config, out *outputs) (*CalibrateResult, error) {
	filter, err := imaging.FilterByName(cfg.Resample)
	if err != nil {
		return nil, err
	}

	lock, err := imaging.Open(cfg.Input.Lockscreen)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}
	pass, err := imaging.Open(cfg.Input.Password)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}
	src, err := imaging.Open(cfg.Input.Source)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}

	w, h := lock.Bounds().Dx(), lock.Bounds().Dy()
	if pw, ph := pass.Bounds().Dx(), pass.Bounds().Dy(); pw != w || ph != h {
		return nil, fmt.Errorf("calibrate: %s is %dx%d but %s is %dx%d",
			cfg.Input.Password, pw, ph, cfg.Input.Lockscreen, w, h)
	}

	ref := calibration.Locate(lock)
	if err := ref.Validate(config.StageCalibrate, cfg.Input.Lockscreen); err != nil {
		return nil, err
	}
	target := calibration.Locate(pass)
	if err := target.Validate(config.StageCalibrate, cfg.Input.Password); err != nil {
		return nil, err
	}
	logging.Printf("calibrate: reference %s, target %s", ref, target)

	box, err := calibration.Solve(lock, ref, target, cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}
	logging.Printf("calibrate: crop box %s", box)

	resized := imaging.ResizeTo(src, w, h, filter)
	cropped, err := imaging.CropResize(resized, box, w, h, filter)
	if err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}

	out.add(cfg.Output.SourceResized, resized)
	out.add(cfg.Output.SourceCropped, cropped)

	if cfg.Output.Overlay != "" {
		overlay, err := imaging.DrawOverlay(lock, box, ref.Crossings(w, h), imaging.OverlayOptions{Labels: true})
		if err != nil {
			return nil, fmt.Errorf("calibrate: %w", err)
		}
		out.add(cfg.Output.Overlay, overlay)
	}

	return &CalibrateResult{
		Width:     w,
		Height:    h,
		Reference: ref,
		Target:    target,
		Box:       box,
		cropped:   cropped,
	}, nil
}

func extractProfile(cfg *config.Config, opts ProfileOptions, src image.Image, out *outputs) (*ProfileResult, error) {
	filter, err := imaging.FilterByName(cfg.Resample)
	if err != nil {
		return nil, err
	}
	markerPath := cfg.Input.MarkerPath()
	marker, err := imaging.Open(markerPath)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	w, h := marker.Bounds().Dx(), marker.Bounds().Dy()

	scale := opts.MaskScale
	if scale == 0 {
		scale = 100
	}
	mask, box, err := profile.ExtractMask(marker, profile.MaskOptions{
		Circle:       opts.Circle,
		ScalePercent: scale,
		Offset:       opts.Offset,
	})
	var notFound *calibration.MarkerNotFoundError
	if errors.As(err, &notFound) {
		notFound.Stage, notFound.Input = config.StageProfile, markerPath
	}
	if err != nil {
		return nil, err
	}
	logging.Printf("profile: mask %v", box)

	result, err := profile.Composite(imaging.ResizeTo(src, w, h, filter), mask)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	tint := opts.Tint
	if opts.AutoTint {
		if opts.Tint != 0 {
			logging.Warnf("--tint %.2f ignored because --auto-tint is set", opts.Tint)
		}
		area := opts.SampleArea
		if area.Empty() {
			area = DefaultSampleArea
		}
		tint, err = profile.DetectTint(marker, area)
		if err != nil {
			return nil, fmt.Errorf("profile: %w", err)
		}
		logging.Printf("profile: detected tint %.2f%%", tint)
	}

	tinted, err := profile.ApplyTint(result, tint)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	out.add(cfg.Output.Result, tinted)
	if opts.ExportMask {
		out.add(cfg.Output.MaskLayer, mask)
	}

	return &ProfileResult{
		Tint:    tint,
		MaskBox: box,
		Width:   tinted.Bounds().Dx(),
		Height:  tinted.Bounds().Dy(),
	}, nil
}
