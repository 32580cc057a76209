package appimage

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// squashfsMagic is the little-endian superblock signature of a squashfs
// image ("hsqs"). AppImages append the image directly after the ELF runtime,
// so the first occurrence past offset zero is the filesystem start.
var squashfsMagic = []byte("hsqs")

// scanWindowSize is the read granularity for the magic scan. Each window
// overlaps the previous one by len(magic)-1 bytes so a signature straddling
// a window boundary is still found.
const scanWindowSize = 64 * 1024

// FindSquashfsOffset scans the file for the embedded squashfs signature and
// returns the first absolute byte offset at which it occurs. The second
// return is false when the whole file was scanned without a match.
func FindSquashfsOffset(path string) (int64, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false, fmt.Errorf("open container: %w", err)
	}
	defer f.Close()
	return findMagic(f, squashfsMagic)
}

func findMagic(r io.Reader, magic []byte) (int64, bool, error) {
	overlap := len(magic) - 1
	buf := make([]byte, scanWindowSize+overlap)

	// Carried is how many overlap bytes at the front of buf belong to the
	// previous window; base is the absolute offset of buf[0].
	carried := 0
	var base int64

	for {
		n, err := io.ReadFull(r, buf[carried:])
		total := carried + n
		if total >= len(magic) {
			if idx := bytes.Index(buf[:total], magic); idx >= 0 {
				return base + int64(idx), true, nil
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, false, nil
		}
		if err != nil {
			return 0, false, fmt.Errorf("scan container: %w", err)
		}

		// Slide the window, keeping the tail that could start a split match.
		copy(buf, buf[total-overlap:total])
		base += int64(total - overlap)
		carried = overlap
	}
}
