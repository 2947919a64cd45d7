// Package font implements the .grf bitmap font format (spec §4.11,
// §6): a packed glyph-offset table plus per-glyph 8-bit coverage
// buffers and sorted kerning pairs. Grounded on
// original_source/src/libdwm/grf.h (binary layout),
// original_source/src/libpatchwork/font.c (load/validate/lookup).
package font

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"patchwork/client/draw"
)

// Magic is the .grf file's leading 4 bytes read little-endian: the C
// multi-character constant 'GRF0' (0x47524630), so the file begins
// with the bytes "0FRG".
const Magic uint32 = 0x47524630

// none is the glyphOffsets/kernOffsets sentinel meaning "no entry".
const none uint32 = 0xFFFFFFFF

const headerSize = 4 + 2 + 2 + 2 + 256*4 + 256*4

var (
	ErrBadMagic   = errors.New("font: bad grf magic")
	ErrTruncated  = errors.New("font: file too small to be a valid grf")
	ErrBadOffset  = errors.New("font: glyph or kerning offset out of range")
)

// Font is a parsed .grf font. It satisfies draw.Font for client/draw,
// and separately exposes a golang.org/x/image/font.Face view (see
// face.go) the way plan9font.subface wraps a custom glyph store
// behind the standard interface.
type Font struct {
	ascender, descender, height int16
	glyphOffsets                [256]uint32
	kernOffsets                 [256]uint32
	buffer                      []byte
}

// Parse validates and parses raw .grf file contents. Mirrors
// font_new's bounds-checking: the magic must match, and every
// non-GRF_NONE offset must point within the file.
func Parse(data []byte) (*Font, error) {
	if len(data) <= headerSize {
		return nil, ErrTruncated
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != Magic {
		return nil, ErrBadMagic
	}

	f := &Font{
		ascender:  int16(binary.LittleEndian.Uint16(data[4:6])),
		descender: int16(binary.LittleEndian.Uint16(data[6:8])),
		height:    int16(binary.LittleEndian.Uint16(data[8:10])),
	}

	off := 10
	for i := 0; i < 256; i++ {
		f.glyphOffsets[i] = binary.LittleEndian.Uint32(data[off : off+4])
		off += 4
	}
	for i := 0; i < 256; i++ {
		f.kernOffsets[i] = binary.LittleEndian.Uint32(data[off : off+4])
		off += 4
	}
	f.buffer = data[off:]

	fileSize := uint32(len(data))
	for _, o := range f.glyphOffsets {
		if o != none && o >= fileSize {
			return nil, ErrBadOffset
		}
	}
	for _, o := range f.kernOffsets {
		if o != none && o >= fileSize {
			return nil, ErrBadOffset
		}
	}

	return f, nil
}

func (f *Font) Ascender() int  { return int(f.ascender) }
func (f *Font) Descender() int { return int(f.descender) }
func (f *Font) Height() int    { return int(f.height) }

// glyphAt decodes the grf_glyph_t at a validated buffer offset.
func (f *Font) glyphAt(offset uint32) draw.Glyph {
	b := f.buffer[offset:]
	bearingX := int16(binary.LittleEndian.Uint16(b[0:2]))
	bearingY := int16(binary.LittleEndian.Uint16(b[2:4]))
	advanceX := int16(binary.LittleEndian.Uint16(b[4:6]))
	// advanceY (b[6:8]) is unused: vertical text layout is out of scope.
	width := binary.LittleEndian.Uint16(b[8:10])
	height := binary.LittleEndian.Uint16(b[10:12])

	coverage := b[12 : 12+int(width)*int(height)]
	return draw.Glyph{
		Width:    int(width),
		Height:   int(height),
		BearingX: int(bearingX),
		BearingY: int(bearingY),
		AdvanceX: int(advanceX),
		Coverage: coverage,
	}
}

// GlyphFor returns the rendered glyph for r, ASCII-only (the grf
// format's offset tables are indexed by a single byte, matching the
// original's (uint8_t)string[i] cast). Mirrors the glyph lookup
// embedded in draw_grf_char/font_width.
func (f *Font) GlyphFor(r rune) (draw.Glyph, bool) {
	if r < 0 || r > 255 {
		return draw.Glyph{}, false
	}
	offset := f.glyphOffsets[byte(r)]
	if offset == none {
		return draw.Glyph{}, false
	}
	return f.glyphAt(offset), true
}

// Width returns the advance width of s, including kerning between
// consecutive runes, ignoring runes with no glyph. Mirrors
// font_width.
func (f *Font) Width(s []rune) int {
	width := 0
	for i, r := range s {
		g, ok := f.GlyphFor(r)
		if !ok {
			continue
		}
		width += g.AdvanceX
		if i != len(s)-1 {
			width += f.Kerning(r, s[i+1])
		}
	}
	return width
}

// kernEntry is one decoded grf_kern_entry_t.
type kernEntry struct {
	secondChar byte
	offsetX    int16
}

// kernBlock decodes the grf_kern_block_t at offset into its sorted
// entry list.
func (f *Font) kernBlock(offset uint32) []kernEntry {
	b := f.buffer[offset:]
	amount := binary.LittleEndian.Uint16(b[0:2])
	entries := make([]kernEntry, amount)
	off := 2
	for i := range entries {
		entries[i] = kernEntry{
			secondChar: b[off],
			offsetX:    int16(binary.LittleEndian.Uint16(b[off+1 : off+3])),
		}
		off += 5
	}
	return entries
}

// Kerning returns the horizontal offset to add between a and b, zero
// if no kerning pair or no kerning block exists for a. Entries are stored
// sorted by second character (font_new's documented invariant), so
// this binary-searches rather than the original's early-break linear
// scan. Mirrors font_kerning_offset.
func (f *Font) Kerning(a, b rune) int {
	if a < 0 || a > 255 || b < 0 || b > 255 {
		return 0
	}
	offset := f.kernOffsets[byte(a)]
	if offset == none {
		return 0
	}

	entries := f.kernBlock(offset)
	target := byte(b)
	i := sort.Search(len(entries), func(i int) bool { return entries[i].secondChar >= target })
	if i < len(entries) && entries[i].secondChar == target {
		return int(entries[i].offsetX)
	}
	return 0
}

// String returns a human-readable summary, useful in error wrapping.
func (f *Font) String() string {
	return fmt.Sprintf("font(ascender=%d descender=%d height=%d)", f.ascender, f.descender, f.height)
}
