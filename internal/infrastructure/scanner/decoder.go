package scanner

import (
	"errors"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// ErrNoSymbol is returned when a frame holds no readable barcode
var ErrNoSymbol = errors.New("no barcode in frame")

// SymbolDecoder reads at most one barcode value from a frame
type SymbolDecoder interface {
	Decode(img image.Image) (string, error)
}

// ZXingDecoder reads retail 1D symbologies: EAN-13, EAN-8, UPC-A, UPC-E and Code 128.
type ZXingDecoder struct {
	readers []gozxing.Reader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewZXingDecoder creates a decoder that tries harder on every frame
func NewZXingDecoder() *ZXingDecoder {
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	return &ZXingDecoder{
		readers: []gozxing.Reader{
			oned.NewMultiFormatUPCEANReader(hints),
			oned.NewCode128Reader(),
		},
		hints: hints,
	}
}

// Decode returns the first value any reader finds, or ErrNoSymbol
func (d *ZXingDecoder) Decode(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", err
	}

	for _, r := range d.readers {
		result, err := r.Decode(bmp, d.hints)
		if err != nil {
			continue
		}
		if text := result.GetText(); text != "" {
			return text, nil
		}
	}
	return "", ErrNoSymbol
}
