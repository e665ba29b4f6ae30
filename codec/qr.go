package codec

import (
	"encoding/base64"
	"fmt"

	"github.com/skip2/go-qrcode"
)

// QRPNG renders the payload's base64 form as a QR code PNG of the
// given pixel size.
func QRPNG(p Payload, size int) ([]byte, error) {
	encoded, err := EncodeBase64(p)
	if err != nil {
		return nil, err
	}
	qr, err := qrcode.New(encoded, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR PNG: %w", err)
	}
	return png, nil
}

// QRDataURL renders the payload as an inline image data URL, ready to
// drop into a checkout page.
func QRDataURL(p Payload, size int) (string, error) {
	png, err := QRPNG(p, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
