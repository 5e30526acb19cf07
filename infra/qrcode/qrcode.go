// Package qrcode renders payment payloads as PNG QR codes.
package qrcode

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/amirasaad/fintechflow/pkg/provider"
	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// DefaultSize is the edge length in pixels of rendered codes.
const DefaultSize = 256

// PNGRenderer encodes payloads with error correction level M.
type PNGRenderer struct {
	size  int
	level qr.ErrorCorrectionLevel
}

// New returns a renderer producing size x size images. Non-positive sizes
// fall back to DefaultSize.
func New(size int) *PNGRenderer {
	if size <= 0 {
		size = DefaultSize
	}
	return &PNGRenderer{size: size, level: qr.M}
}

// Render encodes payload and returns the PNG bytes.
func (r *PNGRenderer) Render(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("qrcode: empty payload")
	}
	code, err := qr.Encode(string(payload), r.level, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encode: %w", err)
	}
	scaled, err := barcode.Scale(code, r.size, r.size)
	if err != nil {
		return nil, fmt.Errorf("qrcode: scale: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("qrcode: png: %w", err)
	}
	return buf.Bytes(), nil
}

// ContentType implements provider.QRCode.
func (r *PNGRenderer) ContentType() string {
	return "image/png"
}

var _ provider.QRCode = (*PNGRenderer)(nil)
