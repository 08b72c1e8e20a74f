package payment

import (
	"strings"
	"testing"

	"github.com/fairsplit/fairsplit/internal/apperr"
)

func TestEncodePayload(t *testing.T) {
	payload, err := EncodePayload(Request{
		Name:      "Carol Rossi",
		IBAN:      "DE89370400440532013000",
		BIC:       "COBADEFFXXX",
		Amount:    1234,
		Reference: "dinner",
	})
	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}

	lines := strings.Split(payload, "\n")
	if len(lines) != 11 {
		t.Fatalf("payload has %d lines, want 11:\n%s", len(lines), payload)
	}
	want := []string{
		"BCD", "002", "1", "SCT",
		"COBADEFFXXX", "Carol Rossi", "DE89370400440532013000",
		"EUR12.34", "", "dinner", "",
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestEncodePayloadValidation(t *testing.T) {
	t.Run("missing IBAN", func(t *testing.T) {
		_, err := EncodePayload(Request{Name: "X", Amount: 100})
		if !apperr.IsValidation(err) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := EncodePayload(Request{Name: "X", IBAN: "DE00", Amount: 0})
		if !apperr.IsValidation(err) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("empty name falls back", func(t *testing.T) {
		payload, err := EncodePayload(Request{IBAN: "DE00", Amount: 100})
		if err != nil {
			t.Fatalf("EncodePayload failed: %v", err)
		}
		if !strings.Contains(payload, "\nUnknown\n") {
			t.Errorf("payload missing fallback name:\n%s", payload)
		}
	})

	t.Run("optional BIC stays empty", func(t *testing.T) {
		payload, err := EncodePayload(Request{Name: "X", IBAN: "DE00", Amount: 100})
		if err != nil {
			t.Fatalf("EncodePayload failed: %v", err)
		}
		if strings.Split(payload, "\n")[4] != "" {
			t.Errorf("BIC line should be empty:\n%s", payload)
		}
	})
}

func TestQRCodePNG(t *testing.T) {
	png, err := QRCodePNG(Request{Name: "X", IBAN: "DE89370400440532013000", Amount: 500}, 256)
	if err != nil {
		t.Fatalf("QRCodePNG failed: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("empty PNG")
	}
	// PNG magic bytes.
	if string(png[1:4]) != "PNG" {
		t.Errorf("output is not a PNG: % x", png[:8])
	}
}
