package qr

import (
	"github.com/skip2/go-qrcode"
)

// QRGenerator renders a unit's scan payload as a PNG for the
// customer-facing ticket download.
type QRGenerator struct {
	size int
}

func NewQRGenerator(size int) *QRGenerator {
	if size <= 0 {
		size = 256
	}
	return &QRGenerator{size: size}
}

func (q *QRGenerator) GeneratePNG(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, q.size)
}
