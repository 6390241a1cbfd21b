package debug

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveFlipsRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := NewScreenshots(dir, "voxelworld")
	s.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	// 1x2: bottom row red, top row blue (GL order).
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := s.Save(pixels, 1, 2)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "voxelworld_2024-05-06_07-08-09") {
		t.Errorf("path = %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	top := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA)
	bottom := color.RGBAModel.Convert(img.At(0, 1)).(color.RGBA)
	if top.B != 255 || bottom.R != 255 {
		t.Errorf("top = %v, bottom = %v; want blue over red", top, bottom)
	}
}

func TestSaveSizeMismatch(t *testing.T) {
	s := NewScreenshots(t.TempDir(), "x")
	if _, err := s.Save(make([]byte, 7), 1, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}
