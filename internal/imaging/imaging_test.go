package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// testPNG encodes a solid-color PNG of the given size.
func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestThumbnailScalesDown(t *testing.T) {
	out, err := Thumbnail(testPNG(t, 800, 600), 400)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	w, h := decodeSize(t, out)
	if w != 400 {
		t.Errorf("width: got %d, want 400", w)
	}
	if h != 300 {
		t.Errorf("height: got %d, want 300 (aspect preserved)", h)
	}
}

func TestThumbnailKeepsSmallImages(t *testing.T) {
	out, err := Thumbnail(testPNG(t, 200, 150), 400)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	w, h := decodeSize(t, out)
	if w != 200 || h != 150 {
		t.Errorf("size: got %dx%d, want 200x150", w, h)
	}
}

func TestThumbnailRejectsGarbage(t *testing.T) {
	if _, err := Thumbnail([]byte("not an image"), 400); err == nil {
		t.Error("expected error for non-image input")
	}
	if _, err := Thumbnail(nil, 400); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestThumbnailOutputIsJPEG(t *testing.T) {
	out, err := Thumbnail(testPNG(t, 100, 100), 400)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(out)); err != nil || format != "jpeg" {
		t.Errorf("format: got %q (err %v), want jpeg", format, err)
	}
}
