package feed

import (
	"fmt"

	"github.com/fivetwenty-io/mws/pkg/mws"
)

// RecognizeBarcodeType infers the identifier type of a barcode from its
// length: 6 or 12 digits are UPC; 8, 13, 14 or 18 are EAN.
func RecognizeBarcodeType(code string) (string, error) {
	switch len(code) {
	case 6, 12:
		return mws.IDTypeUPC, nil
	case 8, 13, 14, 18:
		return mws.IDTypeEAN, nil
	default:
		return "", fmt.Errorf("%w: %q", mws.ErrUnknownBarcodeType, code)
	}
}
