package service

import (
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// TableQR renders a PNG QR code pointing guests at the tenant's booking
// form with the table number pre-filled.
type TableQR struct {
	BaseURL string
	Size    int
}

// URL is the link encoded for a table.
func (g TableQR) URL(tenantID uint64, tableNumber int) string {
	q := url.Values{}
	q.Set("table", fmt.Sprint(tableNumber))
	return fmt.Sprintf("%s/book/%d?%s", g.BaseURL, tenantID, q.Encode())
}

func (g TableQR) PNG(tenantID uint64, tableNumber int) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(g.URL(tenantID, tableNumber), qrcode.Medium, size)
}
