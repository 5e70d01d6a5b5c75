package qr_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk/internal/credential/qr"
	"eventdesk/internal/models"
)

func TestGenerateTicketQR(t *testing.T) {
	generator := qr.NewGenerator()

	payload := models.TicketPayload{
		RegistrationID: "reg-1",
		Name:           "Ada",
		Email:          "ada@x.com",
		EventID:        "event-1",
	}

	png, err := generator.GenerateTicketQR(payload)
	require.NoError(t, err)

	// PNG magic bytes
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestDecodePayload(t *testing.T) {
	payload := models.TicketPayload{
		RegistrationID: "reg-1",
		Name:           "Ada",
		Email:          "ada@x.com",
		EventID:        "event-1",
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	decoded, err := qr.DecodePayload(data)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	_, err = qr.DecodePayload([]byte("not json"))
	assert.Error(t, err)
}
