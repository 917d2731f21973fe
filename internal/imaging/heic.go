package imaging

import (
	"fmt"
	"image"
	"io"

	"github.com/gen2brain/heic"
)

// decodeHEIC decodes a HEIC/HEIF container into a standard bitmap. The
// decoder is a wasm-compiled libheif that only instantiates on first use,
// so uploads that never include camera files never pay for it. Multi-image
// containers (Live Photos and the like) yield the primary frame only.
func decodeHEIC(r io.Reader) (image.Image, error) {
	img, err := heic.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding HEIC: %w", err)
	}
	return img, nil
}
