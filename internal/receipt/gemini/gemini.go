// Package gemini implements receipt analysis with the Gemini vision API.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	generativelanguage "google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/money"
	"github.com/fairsplit/fairsplit/internal/receipt"
)

const prompt = `Analyze this receipt image and extract ALL individual items as separate entries.
If an item has quantity > 1, create separate entries for each individual item.

Return a JSON object with this structure:
{
  "store_name": "Name of the store/restaurant",
  "total_amount": 0.00,
  "currency": "EUR",
  "items": [
    {"name": "Item name", "price": 0.00}
  ]
}

CRITICAL RULES:
- If the receipt shows "5 Tiramisu 42.50", create 5 separate entries of
  {"name": "Tiramisu", "price": 8.50} (unit price = 42.50 / 5).
- "price" is always the unit price of a single item.
- Expand all quantities into individual item entries.
- Include ALL items from the receipt as separate entries.
- Return valid JSON only, no other text.`

// Analyzer talks to the Gemini generateContent endpoint.
type Analyzer struct {
	service *generativelanguage.Service
	model   string
}

var _ receipt.Analyzer = (*Analyzer)(nil)

// New creates an Analyzer. model is the bare model name, e.g.
// "gemini-1.5-flash".
func New(ctx context.Context, apiKey, model string) (*Analyzer, error) {
	service, err := generativelanguage.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Analyzer{service: service, model: model}, nil
}

// wire mirrors the JSON shape the prompt asks for. Prices arrive as decimal
// numbers and are converted to cents on the way out.
type wire struct {
	StoreName   string  `json:"store_name"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`
	Items       []struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	} `json:"items"`
}

// Analyze sends the image inline with the extraction prompt and parses the
// model's JSON reply.
func (a *Analyzer) Analyze(ctx context.Context, image []byte, mimeType string) (*models.ReceiptAnalysis, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Parts: []*generativelanguage.Part{
				{InlineData: &generativelanguage.Blob{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
				{Text: prompt},
			},
		}},
	}

	resp, err := a.service.Models.GenerateContent("models/"+a.model, req).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	text := stripFences(resp.Candidates[0].Content.Parts[0].Text)

	var parsed wire
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse gemini reply: %w", err)
	}

	analysis := &models.ReceiptAnalysis{
		StoreName: parsed.StoreName,
		Currency:  parsed.Currency,
		Total:     money.FromFloat(parsed.TotalAmount),
	}
	for _, item := range parsed.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			name = "Unknown Item"
		}
		price := money.FromFloat(item.Price)
		if price < 0 {
			price = 0
		}
		analysis.Items = append(analysis.Items, models.ReceiptItem{Name: name, Price: price})
	}
	return analysis, nil
}

// stripFences removes a markdown code block wrapper if the model added one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
