package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuessQuantityColumn(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   string
		found  bool
	}{
		{"camel case", []string{"SKU", "InStock", "Price"}, "InStock", true},
		{"first match wins", []string{"Qty", "Stock"}, "Qty", true},
		{"punctuation stripped", []string{"Item", "Qty. on hand"}, "Qty. on hand", true},
		{"underscore", []string{"item_id", "on_hand_quantity"}, "on_hand_quantity", true},
		{"french accent", []string{"Produit", "Quantité"}, "Quantité", true},
		{"french en stock", []string{"Nom", "En Stock"}, "En Stock", true},
		{"spanish", []string{"Producto", "Cantidad"}, "Cantidad", true},
		{"german", []string{"Artikel", "Lagerbestand"}, "Lagerbestand", true},
		{"substring quirk", []string{"SKU", "Discount", "Stock"}, "Discount", true},
		{"no match", []string{"SKU", "Name", "Price"}, "", false},
		{"empty header", nil, "", false},
		{"blank names skipped", []string{"", "---", "Inventory"}, "Inventory", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GuessQuantityColumn(tt.header)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeHeaderName(t *testing.T) {
	assert.Equal(t, "quantiteenstock", normalizeHeaderName("Quantité en stock"))
	assert.Equal(t, "qty2", normalizeHeaderName(" QTY-2 "))
	assert.Equal(t, "", normalizeHeaderName("  _ "))
}
