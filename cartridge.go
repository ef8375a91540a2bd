// cartridge.go - cartridge ROM image and title extraction

package main

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	titleStart = 0x0134
	titleEnd   = 0x0143 // inclusive
)

// Cartridge wraps a ROM image as a read-only byte store addressed from
// 0x0000. It never outgrows the image it was constructed with — there is
// no bank switching in scope here.
type Cartridge struct {
	rom []byte
}

// NewCartridge wraps rom directly; the slice is not copied.
func NewCartridge(rom []byte) *Cartridge {
	return &Cartridge{rom: rom}
}

func (c *Cartridge) Read(addr int) byte {
	if addr < 0 || addr >= len(c.rom) {
		return 0xFF
	}
	return c.rom[addr]
}

func (c *Cartridge) Size() int { return len(c.rom) }

// Title extracts the NUL-trimmed, upper-cased title from header bytes
// 0x134-0x143, rejecting images whose title bytes are not valid UTF-8 — the
// header bytes, not the broad DMG game-title charset, are what callers in
// this core need to validate.
func (c *Cartridge) Title() (string, error) {
	if len(c.rom) <= titleEnd {
		return "", fmt.Errorf("cartridge: image too short for title header (%d bytes)", len(c.rom))
	}
	raw := c.rom[titleStart : titleEnd+1]
	trimmed := strings.TrimRight(string(raw), "\x00")
	if !utf8.ValidString(trimmed) {
		return "", fmt.Errorf("cartridge: title bytes are not valid UTF-8: %q", raw)
	}
	return strings.ToUpper(trimmed), nil
}
