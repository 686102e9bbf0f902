package woff2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidSFNT reports input that is not a well-formed SFNT font.
var ErrInvalidSFNT = errors.New("invalid sfnt")

// Table is one table of an SFNT font.
type Table struct {
	Tag  string
	Data []byte
}

// Font is the parsed table directory of an SFNT (TrueType/OpenType) file.
type Font struct {
	// Flavor is the sfnt version: 0x00010000 for TrueType, "OTTO" for CFF.
	Flavor uint32
	// Tables are sorted by tag.
	Tables []Table
}

// Table returns the data of the table with tag, or nil.
func (f *Font) Table(tag string) []byte {
	for _, t := range f.Tables {
		if t.Tag == tag {
			return t.Data
		}
	}
	return nil
}

// ParseSFNT reads the offset table and table records of an SFNT file.
// Table data slices alias b.
func ParseSFNT(b []byte) (*Font, error) {
	if len(b) < 12 {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the offset table", ErrInvalidSFNT, len(b))
	}
	flavor := binary.BigEndian.Uint32(b[0:4])
	switch flavor {
	case 0x00010000, 0x4F54544F, 0x74727565: // 1.0, "OTTO", "true"
	default:
		return nil, fmt.Errorf("%w: unknown sfnt version %08x", ErrInvalidSFNT, flavor)
	}
	n := int(binary.BigEndian.Uint16(b[4:6]))
	if n == 0 {
		return nil, fmt.Errorf("%w: no tables", ErrInvalidSFNT)
	}
	if len(b) < 12+16*n {
		return nil, fmt.Errorf("%w: table directory truncated", ErrInvalidSFNT)
	}

	f := &Font{Flavor: flavor, Tables: make([]Table, 0, n)}
	seen := make(map[string]bool, n)
	for i := range n {
		rec := b[12+16*i : 28+16*i]
		tag := string(rec[0:4])
		off := uint64(binary.BigEndian.Uint32(rec[8:12]))
		length := uint64(binary.BigEndian.Uint32(rec[12:16]))
		if off+length > uint64(len(b)) {
			return nil, fmt.Errorf("%w: table %q [%d:%d] out of bounds (%d bytes)", ErrInvalidSFNT, tag, off, off+length, len(b))
		}
		if seen[tag] {
			return nil, fmt.Errorf("%w: duplicate table %q", ErrInvalidSFNT, tag)
		}
		seen[tag] = true
		f.Tables = append(f.Tables, Table{Tag: tag, Data: b[off : off+length]})
	}
	sort.Slice(f.Tables, func(i, j int) bool { return f.Tables[i].Tag < f.Tables[j].Tag })
	return f, nil
}

// sfntSize is the size of the font rebuilt as SFNT: header, directory, and
// every table padded to four bytes.
func (f *Font) sfntSize() uint32 {
	size := uint32(12 + 16*len(f.Tables))
	for _, t := range f.Tables {
		size += pad4(uint32(len(t.Data)))
	}
	return size
}

func pad4(n uint32) uint32 {
	return (n + 3) &^ 3
}
