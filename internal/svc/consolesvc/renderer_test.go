package consolesvc_test

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/homecase-console/internal/domain"
	"github.com/mkrupp/homecase-console/internal/svc/consolesvc"
)

func renderText(t *testing.T, doc consolesvc.Document) string {
	t.Helper()

	var buf bytes.Buffer

	r, err := consolesvc.NewRenderer(&buf, consolesvc.FormatText)
	require.NoError(t, err)
	require.NoError(t, r.Render(doc))

	return buf.String()
}

func TestRenderer_ProductListsEveryTranslation(t *testing.T) {
	t.Parallel()

	out := renderText(t, consolesvc.Document{Products: []consolesvc.ProductRow{
		{Product: domain.Product{
			ID:       "p1",
			Price:    decimal.NewFromInt(10),
			IsActive: true,
			Translations: domain.Translations{
				{Language: "es", Description: "Mesa"},
				{Language: "en", Description: "Table"},
			},
		}},
		{Product: domain.Product{ID: "p2", Price: decimal.NewFromInt(5)}},
	}})

	assert.Contains(t, out, "Idioma: es - Descripción: Mesa")
	assert.Contains(t, out, "Idioma: en - Descripción: Table")
	assert.Contains(t, out, consolesvc.MsgNoDescription)
}

func TestRenderer_OrderShowsProductDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		product domain.Product
		want    string
	}{
		{
			name: "first translation",
			product: domain.Product{ID: "p1", Translations: domain.Translations{
				{Language: "es", Description: "Mesa"},
				{Language: "en", Description: "Table"},
			}},
			want: "Mesa",
		},
		{
			name:    "no translations",
			product: domain.Product{ID: "p1"},
			want:    consolesvc.MsgNoDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := renderText(t, consolesvc.Document{Order: &consolesvc.OrderRow{Order: domain.Order{
				ID:       "ord_0001",
				Status:   domain.OrderStatusPending,
				Quantity: 2,
				Total:    decimal.NewFromInt(20),
				Product:  tt.product,
			}}})

			assert.Contains(t, out, "DESCRIPCIÓN")
			assert.Contains(t, out, tt.want)
		})
	}
}
