package intake

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PageCount opens the PDF at path and returns its page count. The image
// track uses this to spread its global page budget across files; callers
// treat a probe failure as "zero pages" rather than a hard error.
func PageCount(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return r.NumPage(), nil
}
