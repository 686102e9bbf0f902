package noise

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"nathanmyers.co/siteassets/internal/rawpng"
)

func TestGenerate_Shape(t *testing.T) {
	rows, err := Generate(17, rand.NewPCG(1, 2))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(rows) != 17 {
		t.Fatalf("rows = %d, want 17", len(rows))
	}
	for y, row := range rows {
		if len(row) != 17 {
			t.Errorf("row %d length = %d, want 17", y, len(row))
		}
	}
}

func TestGenerate_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -4} {
		_, err := Generate(size, rand.NewPCG(1, 2))
		if !errors.Is(err, rawpng.ErrInvalidGeometry) {
			t.Errorf("Generate(%d) error = %v, want ErrInvalidGeometry", size, err)
		}
	}
}

func TestGenerate_SpreadsSamples(t *testing.T) {
	rows, err := Generate(64, rand.NewPCG(7, 7))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	seen := map[byte]bool{}
	var sum int
	for _, row := range rows {
		for _, v := range row {
			seen[v] = true
			sum += int(v)
		}
	}
	// 4096 uniform draws cover nearly every value and average near 127.5.
	if len(seen) < 200 {
		t.Errorf("distinct values = %d, want >= 200", len(seen))
	}
	if mean := float64(sum) / 4096; mean < 115 || mean > 140 {
		t.Errorf("mean = %.1f, want ~127.5", mean)
	}
}

func TestEncode_SeededIsReproducible(t *testing.T) {
	opts := Options{Size: 32, Seed: 42, Seeded: true}
	a, err := Encode(opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b, err := Encode(opts)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("seeded textures differ")
	}

	c, err := Encode(Options{Size: 32, Seed: 43, Seeded: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if bytes.Equal(a, c) {
		t.Error("different seeds produced identical textures")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets", "img", "noise.png")
	res, err := WriteFile(path, Options{Size: DefaultSize})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if res.Width != 64 || res.Height != 64 {
		t.Errorf("result size = %dx%d, want 64x64", res.Width, res.Height)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != res.Bytes {
		t.Errorf("file has %d bytes, result reports %d", len(data), res.Bytes)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("decoded type = %T, want *image.Gray", img)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("bounds = %v, want 64x64", b)
	}
}

func TestWriteFile_InvalidSizeWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise.png")
	if _, err := WriteFile(path, Options{Size: 0}); !errors.Is(err, rawpng.ErrInvalidGeometry) {
		t.Fatalf("WriteFile error = %v, want ErrInvalidGeometry", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("output exists after failure: %v", err)
	}
}
