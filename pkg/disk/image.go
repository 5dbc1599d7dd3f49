package disk

import (
	"bytes"
	"fmt"
	"io"

	"github.com/marmos91/blockfs/pkg/fserrors"
)

// Image layout
//
// A persisted disk image is exactly TotalBlocks*BlockSize bytes. Block i
// occupies [i*BlockSize, (i+1)*BlockSize). There is no header, no checksum
// and no bitmap: only raw block contents survive a save/load cycle.

// WriteTo writes the raw image of every block, in index order, to w.
func (d *Disk) WriteTo(w io.Writer) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var total int64
	for i, blk := range d.blocks {
		n, err := w.Write(blk)
		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("failed to write block %d: %w", i, err)
		}
	}
	return total, nil
}

// Image returns the raw image as a single byte slice.
func (d *Disk) Image() []byte {
	var buf bytes.Buffer
	buf.Grow(int(d.geo.ImageSize()))
	_, _ = d.WriteTo(&buf)
	return buf.Bytes()
}

// Decode builds a disk from a raw image. The image must be exactly
// g.ImageSize() bytes. Every block of the returned disk is free, whatever
// it held when the image was saved.
func Decode(g Geometry, image []byte) (*Disk, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if int64(len(image)) != g.ImageSize() {
		return nil, fserrors.NewInvalidArgumentError(
			fmt.Sprintf("image is %d bytes, expected %d (%d blocks of %d bytes)",
				len(image), g.ImageSize(), g.TotalBlocks, g.BlockSize))
	}

	d, err := NewWithGeometry(g)
	if err != nil {
		return nil, err
	}
	for i := range d.blocks {
		copy(d.blocks[i], image[i*g.BlockSize:(i+1)*g.BlockSize])
	}
	return d, nil
}

// ReadFrom reads exactly g.ImageSize() bytes from r and decodes them.
func ReadFrom(g Geometry, r io.Reader) (*Disk, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	image := make([]byte, g.ImageSize())
	if _, err := io.ReadFull(r, image); err != nil {
		return nil, fmt.Errorf("failed to read disk image: %w", err)
	}
	return Decode(g, image)
}

// BlockInfo summarizes one block of a raw image.
type BlockInfo struct {
	Index   int    `json:"index" yaml:"index"`
	NonZero int    `json:"non_zero" yaml:"non_zero"` // count of non-zero bytes
	Preview string `json:"preview" yaml:"preview"`   // printable prefix of the block content
}

// Scan returns a BlockInfo for every block of the image that holds at least
// one non-zero byte. Used by image inspection, where no bitmap is available.
func Scan(g Geometry, image []byte, previewLen int) ([]BlockInfo, error) {
	if int64(len(image)) != g.ImageSize() {
		return nil, fserrors.NewInvalidArgumentError(
			fmt.Sprintf("image is %d bytes, expected %d", len(image), g.ImageSize()))
	}

	var out []BlockInfo
	for i := 0; i < g.TotalBlocks; i++ {
		blk := image[i*g.BlockSize : (i+1)*g.BlockSize]
		nonZero := 0
		for _, b := range blk {
			if b != 0 {
				nonZero++
			}
		}
		if nonZero == 0 {
			continue
		}
		out = append(out, BlockInfo{
			Index:   i,
			NonZero: nonZero,
			Preview: preview(blk, previewLen),
		})
	}
	return out, nil
}

func preview(blk []byte, n int) string {
	blk = bytes.TrimRight(blk, "\x00")
	if len(blk) > n {
		blk = blk[:n]
	}
	out := make([]byte, len(blk))
	for i, b := range blk {
		if b >= 0x20 && b < 0x7f {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}
