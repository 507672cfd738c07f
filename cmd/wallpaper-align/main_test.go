package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	imgutil "github.com/ironsheep/wallpaper-align/internal/imaging"
	"github.com/ironsheep/wallpaper-align/internal/logging"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := execute(cmd, opts)
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	body := fmt.Sprintf(`{
  "input": {"lockscreen": %q, "password": %q, "source": %q},
  "output": {"pattern": %q, "source_cropped": %q, "source_resized": %q, "result": %q}
}`,
		filepath.Join(dir, "lock.png"), filepath.Join(dir, "pass.png"), filepath.Join(dir, "src.png"),
		filepath.Join(dir, "pattern.png"), filepath.Join(dir, "cropped.png"),
		filepath.Join(dir, "resized.png"), filepath.Join(dir, "result.png"))
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wallpaper-align "+Version)
	assert.Contains(t, out, "Git commit")
}

func TestPatternCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	out, err := runCLI(t, "--config", cfg, "pattern", "--width", "120", "--height", "80")
	require.NoError(t, err)
	assert.Contains(t, out, "pattern 120x80 (border 6 px)")

	img, err := imgutil.Open(filepath.Join(dir, "pattern.png"))
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
}

func TestPatternCommand_WidthNeedsHeight(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "--config", writeConfig(t, dir), "pattern", "--width", "120")
	assert.Error(t, err)
}

func TestCalibrateCommand_MissingInputs(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "--config", writeConfig(t, dir), "calibrate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock.png")
}

func TestProfileCommand_BadSampleArea(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "--config", writeConfig(t, dir), "profile", "--auto-tint", "--sample-area", "1,2,3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--sample-area")
}

func TestMissingConfig(t *testing.T) {
	_, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.json"), "calibrate")
	assert.Error(t, err)
}

func TestServeCommand(t *testing.T) {
	cmd := newRootCmd(&rootOptions{})
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(`{"jsonrpc":"2.0","id":7,"method":"ping"}` + "\n"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"serve"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"id":7`)
}

func TestProfileFlags_Options(t *testing.T) {
	f := &profileFlags{sampleArea: []int{1, 2, 30, 40}, offsetX: 3, offsetY: -4}
	f.opts.MaskScale = 80

	opts, err := f.options()
	require.NoError(t, err)
	assert.Equal(t, 1, opts.SampleArea.Min.X)
	assert.Equal(t, 40, opts.SampleArea.Max.Y)
	assert.Equal(t, -4, opts.Offset.Y)

	f.opts.MaskScale = 0
	_, err = f.options()
	assert.Error(t, err)
}

func TestLogFileClosedOnFailure(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "align.log")
	t.Cleanup(func() { logging.SetDebug(false) })

	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-file", logPath, "--debug", "--config", filepath.Join(dir, "nope.json"), "calibrate"})

	err := execute(cmd, opts)
	require.Error(t, err)
	assert.Nil(t, opts.logCloser)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "wallpaper-align "+Version)

	// Closing twice is a no-op.
	assert.NoError(t, opts.closeLog())
}
