// Package rawpng encodes single-channel 8-bit grayscale images as PNG files
// without going through an image library.
//
// The output is always the same four parts:
//
//	signature | IHDR | IDAT | IEND
//
// Every scanline is stored with filter type 0 (None) and the whole stream is
// compressed once with zlib at [zlib.BestCompression]. Encoding is a pure
// function of its input: identical pixels produce identical bytes.
package rawpng

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
)

// ///////////////////////////////////////////////
// Format Constants
// ///////////////////////////////////////////////

// Signature is the fixed 8-byte PNG file signature.
var Signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// Chunk type tags.
const (
	TagHeader = "IHDR"
	TagData   = "IDAT"
	TagEnd    = "IEND"
)

// IHDR field values. Only 8-bit grayscale without interlacing is produced.
const (
	BitDepth          = 8
	ColorGrayscale    = 0
	CompressionMethod = 0
	FilterMethod      = 0
	InterlaceNone     = 0

	// FilterNone is the per-scanline filter type byte; samples are stored verbatim.
	FilterNone = 0

	// headerLen is the IHDR payload size in bytes.
	headerLen = 13
)

// ///////////////////////////////////////////////
// Encoding
// ///////////////////////////////////////////////

// Encode serializes a width x height grayscale pixel matrix into PNG bytes.
//
// pixels must hold exactly height rows of exactly width samples each. Any
// mismatch, or a non-positive dimension, returns an error wrapping
// [ErrInvalidGeometry] and no bytes.
func Encode(width, height int, pixels [][]byte) ([]byte, error) {
	if err := checkGeometry(width, height, pixels); err != nil {
		return nil, err
	}

	idat, err := compressScanlines(width, pixels)
	if err != nil {
		return nil, fmt.Errorf("compress scanlines: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(Signature) + 3*12 + headerLen + len(idat))
	buf.Write(Signature[:])
	writeChunk(&buf, TagHeader, headerPayload(width, height))
	writeChunk(&buf, TagData, idat)
	writeChunk(&buf, TagEnd, nil)
	return buf.Bytes(), nil
}

// EncodeImage encodes an [image.Gray] by taking one row of Pix per scanline.
func EncodeImage(img *image.Gray) ([]byte, error) {
	if img == nil {
		return nil, &GeometryError{Reason: "nil image", Row: -1, Col: -1}
	}
	b := img.Bounds()
	rows := make([][]byte, b.Dy())
	for y := range rows {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		rows[y] = img.Pix[off : off+b.Dx()]
	}
	return Encode(b.Dx(), b.Dy(), rows)
}

// headerPayload builds the 13-byte IHDR payload.
func headerPayload(width, height int) []byte {
	p := make([]byte, headerLen)
	binary.BigEndian.PutUint32(p[0:4], uint32(width))
	binary.BigEndian.PutUint32(p[4:8], uint32(height))
	p[8] = BitDepth
	p[9] = ColorGrayscale
	p[10] = CompressionMethod
	p[11] = FilterMethod
	p[12] = InterlaceNone
	return p
}

// compressScanlines zlib-compresses the filtered scanline stream: each row is
// prefixed with a [FilterNone] byte, rows in top-to-bottom order.
func compressScanlines(width int, pixels [][]byte) ([]byte, error) {
	var out bytes.Buffer
	zw, err := zlib.NewWriterLevel(&out, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	line := make([]byte, 1+width)
	line[0] = FilterNone
	for _, row := range pixels {
		copy(line[1:], row)
		if _, err := zw.Write(line); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// writeChunk frames one chunk as len | tag | payload | crc32(tag+payload).
// Writes to a bytes.Buffer cannot fail.
func writeChunk(buf *bytes.Buffer, tag string, payload []byte) {
	var word [4]byte
	binary.BigEndian.PutUint32(word[:], uint32(len(payload)))
	buf.Write(word[:])
	buf.WriteString(tag)
	buf.Write(payload)
	binary.BigEndian.PutUint32(word[:], ChunkCRC(tag, payload))
	buf.Write(word[:])
}

// ChunkCRC returns the CRC-32 (IEEE, as used by zlib and PNG) of tag
// followed by payload.
func ChunkCRC(tag string, payload []byte) uint32 {
	crc := crc32.Update(0, crc32.IEEETable, []byte(tag))
	return crc32.Update(crc, crc32.IEEETable, payload)
}
