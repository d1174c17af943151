package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"framemedian/pkg/config"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func writeGrayPNG(t *testing.T, path string, value func(x, y int) uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 6, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 6; x++ {
			img.Pix[y*img.Stride+x] = value(x, y)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func readGrayPNG(t *testing.T, path string) *image.Gray {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("expected gray image, got %T", img)
	}
	return gray
}

// makeClips writes one directory per entry in levels; clip i frame k is uniform
// at levels[i] + 10*k
func makeClips(t *testing.T, root string, numFrames int, levels ...uint8) []string {
	t.Helper()
	var dirs []string
	for i, level := range levels {
		dir := filepath.Join(root, fmt.Sprintf("clip%d", i))
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		for k := 0; k < numFrames; k++ {
			v := level + uint8(10*k)
			writeGrayPNG(t, filepath.Join(dir, fmt.Sprintf("img_%d.png", k)), func(int, int) uint8 { return v })
		}
		dirs = append(dirs, dir)
	}
	return dirs
}

func TestConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "job.yaml")
	out, _, err := runCLI(t, "config", "init", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote default configuration")

	cfg, err := config.LoadConfig(target)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.Filter.Samples != 4096 {
		t.Errorf("Expected 4096 samples, got %d", cfg.Filter.Samples)
	}

	if _, _, err := runCLI(t, "config", "init", target); err == nil {
		t.Fatal("expected error when config exists")
	}
	if _, _, err := runCLI(t, "config", "init", "--overwrite", target); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestRunMedian(t *testing.T) {
	root := t.TempDir()
	dirs := makeClips(t, root, 3, 50, 20, 90)
	outDir := filepath.Join(root, "out")

	out, _, err := runCLI(t, "--config", filepath.Join(root, "none.yaml"), "--log-level", "error",
		"run", "--clips", strings.Join(dirs, ","), "--out", outDir, "--workers", "2")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Wrote 3 frames")

	for k := 0; k < 3; k++ {
		img := readGrayPNG(t, filepath.Join(outDir, fmt.Sprintf("frame_%06d.png", k)))
		want := uint8(50 + 10*k)
		if img.Pix[0] != want {
			t.Errorf("frame %d: expected %d, got %d", k, want, img.Pix[0])
		}
	}
}

func TestRunFromConfigFile(t *testing.T) {
	root := t.TempDir()
	dirs := makeClips(t, root, 4, 10)
	outDir := filepath.Join(root, "out")

	cfg := config.DefaultConfig()
	cfg.Filter.Mode = "temporalmedian"
	cfg.Input.Clips = dirs
	cfg.Output.Dir = outDir
	cfg.Output.Last = 1
	cfg.Logging.Level = "error"
	path := filepath.Join(root, "job.yaml")
	if err := config.SaveConfig(cfg, path); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, "--config", path, "run")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Wrote 2 frames")

	// Frame 0 sees frames {0,0,1}
	img := readGrayPNG(t, filepath.Join(outDir, "frame_000000.png"))
	if img.Pix[0] != 10 {
		t.Errorf("expected 10, got %d", img.Pix[0])
	}
	if _, err := os.Stat(filepath.Join(outDir, "frame_000002.png")); !os.IsNotExist(err) {
		t.Errorf("frame 2 is outside the requested range")
	}
}

func TestRunWithSyncPrintsSummary(t *testing.T) {
	root := t.TempDir()
	dirs := makeClips(t, root, 5, 40, 40, 40)
	out, _, err := runCLI(t, "--config", filepath.Join(root, "none.yaml"), "--log-level", "error",
		"run", "--clips", strings.Join(dirs, ","), "--out", filepath.Join(root, "out"), "--sync", "1")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Alignment summary")
	requireContains(t, out, "Offsets")
}

func TestRunErrors(t *testing.T) {
	root := t.TempDir()
	dirs := makeClips(t, root, 2, 1, 2, 3, 4)
	none := filepath.Join(root, "none.yaml")

	_, _, err := runCLI(t, "--config", none, "run")
	if err == nil || !strings.Contains(err.Error(), "no input clips") {
		t.Fatalf("expected missing clips error, got %v", err)
	}

	_, _, err = runCLI(t, "--config", none, "run", "--clips", strings.Join(dirs, ","))
	if err == nil || !strings.Contains(err.Error(), "Need an odd number of clips") {
		t.Fatalf("expected odd clip count error, got %v", err)
	}

	_, _, err = runCLI(t, "--config", none, "run", "--mode", "mean", "--clips", dirs[0])
	if err == nil || !strings.Contains(err.Error(), "filter.mode") {
		t.Fatalf("expected mode error, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeGrayPNG(t, a, func(x, y int) uint8 { return 0 })
	writeGrayPNG(t, b, func(x, y int) uint8 { return 255 })

	out, _, err := runCLI(t, "compare", a, a)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	requireContains(t, out, "100.000000")

	out, _, err = runCLI(t, "compare", "--samples", "0", a, b)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	requireContains(t, out, "0.000000")

	if _, _, err := runCLI(t, "compare", a); err == nil {
		t.Fatal("expected argument count error")
	}
}
