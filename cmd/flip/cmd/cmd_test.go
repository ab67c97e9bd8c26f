package cmd

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/fliptrack/internal/model"
)

func run(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&out)
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), err
}

func writePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(dir, "kitchen.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestProjectsCmd(t *testing.T) {
	out, err := run(t, ProjectsCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "ADDRESS")
	assert.Contains(t, out, "%")
}

func TestReportCmd(t *testing.T) {
	t.Run("json to stdout", func(t *testing.T) {
		out, err := run(t, ReportCmd(), "1", "--format", "json", "--tz", "UTC")
		require.NoError(t, err)

		var r model.Report
		require.NoError(t, json.Unmarshal([]byte(out), &r))
		assert.Equal(t, 1, r.Project.ID)
		assert.Equal(t, len(r.Updates), r.TotalUpdates)
	})

	t.Run("text to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.txt")
		_, err := run(t, ReportCmd(), "1", "-o", path, "--tz", "UTC")
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "PROJECT REPORT")
	})

	t.Run("unknown project", func(t *testing.T) {
		_, err := run(t, ReportCmd(), "999")
		assert.Error(t, err)
	})

	t.Run("bad id", func(t *testing.T) {
		_, err := run(t, ReportCmd(), "abc")
		assert.Error(t, err)
	})
}

func TestCompressCmd(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, 400, 200)

	out, err := run(t, CompressCmd(), in, "--max-width", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "400x200")
	assert.Contains(t, out, "100x50")

	data, err := os.ReadFile(filepath.Join(dir, "compressed_kitchen.jpg"))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
}

func TestThumbnailCmd(t *testing.T) {
	dir := t.TempDir()
	in := writePNG(t, dir, 300, 150)

	_, err := run(t, ThumbnailCmd(), in, "-s", "64")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "thumb_kitchen.jpg"))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 64, cfg.Height)
}

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, 20, 20)
	bad := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(bad, []byte("not a photo"), 0o644))

	out, err := run(t, ValidateCmd(), good)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")

	out, err = run(t, ValidateCmd(), good, bad)
	assert.Error(t, err)
	assert.Contains(t, out, "FAIL  "+bad)
	assert.Contains(t, out, "Please select an image file.")
}

func TestMigrateCmd(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "prefs.db")

	_, err := run(t, MigrateCmd(), "up", "--dsn", dsn)
	require.NoError(t, err)

	_, err = run(t, MigrateCmd(), "down", "--dsn", dsn)
	require.NoError(t, err)
}
