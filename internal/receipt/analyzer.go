// Package receipt defines the receipt-analysis port implemented by image
// analysis backends.
package receipt

import (
	"context"

	"github.com/fairsplit/fairsplit/internal/models"
)

// Analyzer extracts structured line items from a receipt photo. The returned
// analysis has quantities already expanded: a "2x beer" line becomes two
// one-beer items, so apportioning can assign each unit independently.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (*models.ReceiptAnalysis, error)
}
