// pkg/qr/qr.go

package qr

import (
	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/skip2/go-qrcode"
)

// Renderer turns a text payload into a PNG image
type Renderer interface {
	PNG(payload string) ([]byte, error)
}

// Generator renders QR codes in memory with go-qrcode
type Generator struct {
	Size  int
	Level qrcode.RecoveryLevel
}

// NewGenerator returns a generator producing size x size pixel images with
// medium error correction
func NewGenerator(size int) *Generator {
	return &Generator{Size: size, Level: qrcode.Medium}
}

func (g *Generator) PNG(payload string) ([]byte, error) {
	if payload == "" {
		return nil, ierr.NewError("empty QR payload").Mark(ierr.ErrEncoding)
	}

	code, err := qrcode.New(payload, g.Level)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("payment descriptor could not be encoded as a QR code").
			Mark(ierr.ErrEncoding)
	}

	png, err := code.PNG(g.Size)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	return png, nil
}
