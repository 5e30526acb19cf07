package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGRenderer_Render(t *testing.T) {
	r := New(0)
	out, err := r.Render([]byte(`{"amount":42.50,"description":null,"merchant_name":"M","pix_key":"k"}`))
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
	assert.Equal(t, DefaultSize, img.Bounds().Dy())
	assert.Equal(t, "image/png", r.ContentType())
}

func TestPNGRenderer_EmptyPayload(t *testing.T) {
	_, err := New(128).Render(nil)
	assert.Error(t, err)
}
