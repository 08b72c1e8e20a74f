// Package payment builds SEPA credit transfer QR codes (EPC069-12) so a
// debtor can settle up by scanning with any European banking app.
package payment

import (
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/money"
)

// Request describes one payment to encode. Name and IBAN are required; BIC
// and Reference are optional per the EPC guideline.
type Request struct {
	Name      string
	IBAN      string
	BIC       string
	Amount    money.Cents
	Reference string
}

// EncodePayload builds the plain-text EPC payload. Exposed separately from
// the PNG rendering so it can be verified without decoding an image.
func EncodePayload(req Request) (string, error) {
	if req.Amount <= 0 {
		return "", apperr.Validationf("payment amount must be positive")
	}
	if strings.TrimSpace(req.IBAN) == "" {
		return "", apperr.Validationf("recipient has no bank details configured")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Unknown"
	}

	fields := []string{
		"BCD",                    // Service Tag
		"002",                    // Version
		"1",                      // Character set (UTF-8)
		"SCT",                    // Identification (SEPA Credit Transfer)
		req.BIC,                  // BIC of the Beneficiary Bank
		name,                     // Name of the Beneficiary
		req.IBAN,                 // Account number (IBAN)
		"EUR" + req.Amount.String(), // Amount in EUR
		"",                       // Purpose (empty)
		req.Reference,            // Structured Reference
		"",                       // Unstructured Remittance Information
	}
	return strings.Join(fields, "\n"), nil
}

// QRCodePNG renders the EPC payload as a PNG image.
func QRCodePNG(req Request, size int) ([]byte, error) {
	payload, err := EncodePayload(req)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, apperr.Storef("encode payment qr", err)
	}
	return png, nil
}
