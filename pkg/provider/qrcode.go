package provider

// QRCode renders a payment payload into an image.
type QRCode interface {
	// Render returns the encoded image bytes for payload.
	Render(payload []byte) ([]byte, error)
	// ContentType is the MIME type of the rendered image.
	ContentType() string
}
