// Package woff2 wraps SFNT fonts in the WOFF2 web font container.
//
// Tables are stored without the optional glyf/loca/hmtx transforms (glyf
// and loca use transform version 3, the null transform), and all table data
// is compressed as a single brotli stream at the highest quality.
package woff2

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/andybalholm/brotli"
)

// Signature is the WOFF2 magic number, "wOF2".
const Signature = 0x774F4632

// headerSize is the fixed WOFF2 header length.
const headerSize = 48

// knownTags are the table tags WOFF2 encodes as a 6-bit index instead of a
// 4-byte tag. Index 63 means an explicit tag follows.
var knownTags = [...]string{
	"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post",
	"cvt ", "fpgm", "glyf", "loca", "prep", "CFF ", "VORG", "EBDT",
	"EBLC", "gasp", "hdmx", "kern", "LTSH", "PCLT", "VDMX", "vhea",
	"vmtx", "BASE", "GDEF", "GPOS", "GSUB", "EBSC", "JSTF", "MATH",
	"CBDT", "CBLC", "COLR", "CPAL", "SVG ", "sbix", "acnt", "avar",
	"bdat", "bloc", "bsln", "cvar", "fdsc", "feat", "fmtx", "fvar",
	"gvar", "hsty", "just", "lcar", "mort", "morx", "opbd", "prop",
	"trak", "Zapf", "Silf", "Glat", "Gloc", "Feat", "Sill",
}

// customTag is the flag index announcing an explicit 4-byte tag.
const customTag = 63

// headFlagLossless is head.flags bit 11, which WOFF2 decoders require to be
// set: the font data went through a lossless transform.
const headFlagLossless = 0x0800

// nullTransform is the transform version meaning "stored as is" for glyf
// and loca; every other table uses version 0 for that.
const nullTransform = 3

// TagIndex returns the known-tag index of tag, or 63 when it has none.
func TagIndex(tag string) int {
	for i, t := range knownTags {
		if t == tag {
			return i
		}
	}
	return customTag
}

// Encode converts SFNT font bytes into a WOFF2 file.
func Encode(sfnt []byte) ([]byte, error) {
	f, err := ParseSFNT(sfnt)
	if err != nil {
		return nil, err
	}
	return EncodeFont(f)
}

// EncodeFont converts a parsed font into a WOFF2 file.
func EncodeFont(f *Font) ([]byte, error) {
	if len(f.Tables) == 0 {
		return nil, fmt.Errorf("%w: no tables", ErrInvalidSFNT)
	}

	var dir bytes.Buffer
	for _, t := range f.Tables {
		writeDirectoryEntry(&dir, t)
	}

	var compressed bytes.Buffer
	bw := brotli.NewWriterLevel(&compressed, brotli.BestCompression)
	for _, t := range f.Tables {
		data := t.Data
		if t.Tag == "head" {
			data = markLossless(data)
		}
		if _, err := bw.Write(data); err != nil {
			return nil, fmt.Errorf("compress %q: %w", t.Tag, err)
		}
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("compress tables: %w", err)
	}

	total := pad4(uint32(headerSize + dir.Len() + compressed.Len()))
	major, minor := fontRevision(f)

	out := make([]byte, headerSize, total)
	be := binary.BigEndian
	be.PutUint32(out[0:4], Signature)
	be.PutUint32(out[4:8], f.Flavor)
	be.PutUint32(out[8:12], total)
	be.PutUint16(out[12:14], uint16(len(f.Tables)))
	// out[14:16] reserved, zero
	be.PutUint32(out[16:20], f.sfntSize())
	be.PutUint32(out[20:24], uint32(compressed.Len()))
	be.PutUint16(out[24:26], major)
	be.PutUint16(out[26:28], minor)
	// out[28:48] metadata and private blocks: none

	out = append(out, dir.Bytes()...)
	out = append(out, compressed.Bytes()...)
	for uint32(len(out)) < total {
		out = append(out, 0)
	}
	return out, nil
}

// writeDirectoryEntry writes flags, an optional explicit tag, and the
// original length. No transformLength follows because every table uses its
// null transform.
func writeDirectoryEntry(buf *bytes.Buffer, t Table) {
	idx := TagIndex(t.Tag)
	flags := byte(idx)
	if t.Tag == "glyf" || t.Tag == "loca" {
		flags |= nullTransform << 6
	}
	buf.WriteByte(flags)
	if idx == customTag {
		buf.WriteString(t.Tag)
	}
	buf.Write(AppendUIntBase128(nil, uint32(len(t.Data))))
}

// markLossless returns a copy of the head table with flags bit 11 set. The
// length is unchanged, so the directory and totalSfntSize still hold.
func markLossless(head []byte) []byte {
	out := bytes.Clone(head)
	if len(out) >= 18 {
		flags := binary.BigEndian.Uint16(out[16:18])
		binary.BigEndian.PutUint16(out[16:18], flags|headFlagLossless)
	}
	return out
}

// fontRevision splits head.fontRevision (16.16 fixed) into the WOFF2
// major and minor version fields.
func fontRevision(f *Font) (major, minor uint16) {
	head := f.Table("head")
	if len(head) < 8 {
		return 1, 0
	}
	return binary.BigEndian.Uint16(head[4:6]), binary.BigEndian.Uint16(head[6:8])
}

// AppendUIntBase128 appends v in WOFF2's variable-length UIntBase128 form:
// big-endian 7-bit groups, high bit set on all but the last, no leading
// zero groups.
func AppendUIntBase128(b []byte, v uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7f)
	for v >>= 7; v != 0; v >>= 7 {
		i--
		tmp[i] = byte(v&0x7f) | 0x80
	}
	return append(b, tmp[i:]...)
}
