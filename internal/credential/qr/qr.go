package qr

import (
	"encoding/json"

	"github.com/skip2/go-qrcode"

	"eventdesk/internal/models"
)

// Generator renders ticket payloads as QR images. The payload is plain
// JSON with no signature and no expiry: it is display/scan data only, and
// authoritative verification happens outside this service.
type Generator struct {
	size int
}

func NewGenerator() *Generator {
	return &Generator{size: 256}
}

// GenerateTicketQR encodes the payload as a PNG QR code.
func (g *Generator) GenerateTicketQR(payload models.TicketPayload) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, g.size)
}

// DecodePayload parses a scanned payload back into its record form.
func DecodePayload(data []byte) (models.TicketPayload, error) {
	var payload models.TicketPayload
	err := json.Unmarshal(data, &payload)
	return payload, err
}
