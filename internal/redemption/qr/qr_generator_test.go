package qr_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-boxoffice/internal/redemption/qr"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func TestGeneratePNG(t *testing.T) {
	generator := qr.NewQRGenerator(256)

	png, err := generator.GeneratePNG("TKT-ABC12345-1-0042")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngHeader))
}

func TestGeneratePNGEmptyPayload(t *testing.T) {
	generator := qr.NewQRGenerator(256)

	_, err := generator.GeneratePNG("")
	assert.Error(t, err)
}

func TestNewQRGeneratorDefaultSize(t *testing.T) {
	generator := qr.NewQRGenerator(0)

	png, err := generator.GeneratePNG("TKT-ABC12345-1-0042")
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}
