// subset_test.go tests the site charset, code point range parsing, glyph
// mapping, and subset output in both SFNT and WOFF2 form.

package subset

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/tdewolff/font"
	"golang.org/x/image/font/gofont/goregular"
)

// ///////////////////////////////////////////////
// Charset
// ///////////////////////////////////////////////

func TestDefaultCharset(t *testing.T) {
	cs := DefaultCharset()
	if cs.Len() != 172 {
		t.Errorf("Len = %d, want 172", cs.Len())
	}
	for _, r := range "AZaz09 ~\\`\"‘’“”–—©®™…°•×÷±ÀÆÇÐÑØÝÞßåæðøýþÿ" {
		if !cs.Contains(r) {
			t.Errorf("missing %q (U+%04X)", r, r)
		}
	}
	for _, r := range "\t\n€Œœ¡¿" {
		if cs.Contains(r) {
			t.Errorf("unexpected %q (U+%04X)", r, r)
		}
	}
}

func TestCharset_RunesSorted(t *testing.T) {
	cs := NewCharset("cba", "abc")
	cs.Add('z', 'a')
	got := cs.Runes()
	want := []rune{'a', 'b', 'c', 'z'}
	if !slices.Equal(got, want) {
		t.Errorf("Runes = %q, want %q", got, want)
	}
	if cs.String() != "abcz" {
		t.Errorf("String = %q, want %q", cs.String(), "abcz")
	}
}

func TestParseRanges(t *testing.T) {
	cs, err := ParseRanges("U+0041-0043, u+00a9,2014 ,")
	if err != nil {
		t.Fatalf("ParseRanges: %v", err)
	}
	want := []rune{'A', 'B', 'C', '©', '—'}
	if got := cs.Runes(); !slices.Equal(got, want) {
		t.Errorf("Runes = %q, want %q", got, want)
	}

	empty, err := ParseRanges("")
	if err != nil || empty.Len() != 0 {
		t.Errorf("ParseRanges(\"\") = %v, %v; want empty", empty, err)
	}
}

func TestParseRangesInvalid(t *testing.T) {
	for _, s := range []string{"U+ZZZZ", "U+0043-0041", "U+110000", "U+0041-", "-0041"} {
		if _, err := ParseRanges(s); err == nil {
			t.Errorf("ParseRanges(%q) expected error", s)
		}
	}
}

// ///////////////////////////////////////////////
// Subsetting
// ///////////////////////////////////////////////

func TestGlyphIDs(t *testing.T) {
	sfnt, err := font.ParseSFNT(goregular.TTF, 0)
	if err != nil {
		t.Fatalf("ParseSFNT: %v", err)
	}
	ids, rep := GlyphIDs(sfnt, NewCharset("AAB", "中"))
	if rep.Requested != 3 || rep.Mapped != 2 {
		t.Errorf("requested/mapped = %d/%d, want 3/2", rep.Requested, rep.Mapped)
	}
	if !slices.Equal(rep.Missing, []rune{'中'}) {
		t.Errorf("Missing = %q, want [中]", rep.Missing)
	}
	if len(ids) != 3 || ids[0] != 0 {
		t.Errorf("ids = %v, want .notdef plus two glyphs", ids)
	}
	if !slices.IsSorted(ids) {
		t.Errorf("ids not sorted: %v", ids)
	}
}

func TestSubset(t *testing.T) {
	out, rep, err := Subset(goregular.TTF, NewCharset("NATH"))
	if err != nil {
		t.Fatalf("Subset: %v", err)
	}
	if len(out) >= len(goregular.TTF) {
		t.Errorf("subset %d bytes not smaller than %d", len(out), len(goregular.TTF))
	}
	if rep.Glyphs != 5 {
		t.Errorf("Glyphs = %d, want 5", rep.Glyphs)
	}

	sub, err := font.ParseSFNT(out, 0)
	if err != nil {
		t.Fatalf("parse subset: %v", err)
	}
	for _, r := range "NATH" {
		if sub.GlyphIndex(r) == 0 {
			t.Errorf("subset lost %q", r)
		}
	}
	if sub.GlyphIndex('Z') != 0 {
		t.Error("subset kept 'Z'")
	}
}

func TestSubset_NothingMapped(t *testing.T) {
	if _, _, err := Subset(goregular.TTF, NewCharset("中文")); err == nil {
		t.Error("expected error when no requested character exists")
	}
}

func TestSubset_NotAFont(t *testing.T) {
	if _, _, err := Subset([]byte("definitely not a font"), NewCharset("A")); err == nil {
		t.Error("expected parse error")
	}
}

func TestWriteFile_WOFF2(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "go.ttf")
	if err := os.WriteFile(in, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "fonts", "go-subset.woff2")

	res, err := WriteFile(in, out, DefaultCharset())
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if res.Format != FormatWOFF2 {
		t.Errorf("Format = %q, want woff2", res.Format)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) != res.Bytes {
		t.Errorf("file %d bytes, result %d", len(data), res.Bytes)
	}
	if string(data[:4]) != "wOF2" {
		t.Fatalf("magic = %q, want wOF2", data[:4])
	}
	if _, err := font.ParseWOFF2(data); err != nil {
		t.Fatalf("ParseWOFF2: %v", err)
	}
	sfntData, err := font.ToSFNT(data)
	if err != nil {
		t.Fatalf("ToSFNT: %v", err)
	}
	sfnt, err := font.ParseSFNT(sfntData, 0)
	if err != nil {
		t.Fatalf("ParseSFNT: %v", err)
	}
	for _, r := range "Az9é" {
		if sfnt.GlyphIndex(r) == 0 {
			t.Errorf("woff2 subset lost %q", r)
		}
	}
}

func TestWriteFile_SFNT(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "go.ttf")
	if err := os.WriteFile(in, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "go-subset.ttf")
	res, err := WriteFile(in, out, NewCharset("abc"))
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if res.Format != FormatSFNT {
		t.Errorf("Format = %q, want sfnt", res.Format)
	}
	data, _ := os.ReadFile(out)
	if _, err := font.ParseSFNT(data, 0); err != nil {
		t.Errorf("output is not SFNT: %v", err)
	}
}

func TestWriteFile_MissingInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "x.woff2")
	if _, err := WriteFile(filepath.Join(t.TempDir(), "nope.ttf"), out, DefaultCharset()); err == nil {
		t.Error("expected error for missing input")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("output written despite failure")
	}
}

func TestOutputName(t *testing.T) {
	got := OutputName("fonts/BigBlueTerm437NerdFontMono-Regular.ttf", "public/fonts", "-subset")
	want := filepath.Join("public/fonts", "BigBlueTerm437NerdFontMono-Regular-subset.woff2")
	if got != want {
		t.Errorf("OutputName = %q, want %q", got, want)
	}
}

func TestFormatFor(t *testing.T) {
	tests := map[string]Format{
		"a.woff2": FormatWOFF2,
		"a.TTF":   FormatSFNT,
		"a.otf":   FormatSFNT,
		"a":       FormatWOFF2,
	}
	for path, want := range tests {
		if got := FormatFor(path); got != want {
			t.Errorf("FormatFor(%q) = %q, want %q", path, got, want)
		}
	}
}
