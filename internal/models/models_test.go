package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestProductProfitMargin(t *testing.T) {
	product := Product{CostPrice: dec("6.00"), SellingPrice: dec("10.00")}
	// (10-6)/6*100 = 66.66...
	assert.Equal(t, "66.67", product.ProfitMargin().Round(2).String())

	product = Product{CostPrice: dec("10.00"), SellingPrice: dec("15.00")}
	assert.True(t, product.ProfitMargin().Equal(dec("50")))
}

func TestProductProfitMarginZeroCost(t *testing.T) {
	product := Product{CostPrice: decimal.Zero, SellingPrice: dec("10.00")}
	assert.True(t, product.ProfitMargin().IsZero())
}

func TestSaleItemProfit(t *testing.T) {
	item := SaleItem{Quantity: 3, UnitPrice: dec("10.00"), CostPrice: dec("6.00")}
	assert.True(t, item.Profit().Equal(dec("12")))
	assert.True(t, item.TotalCost().Equal(dec("18")))
}

func TestSaleTotals(t *testing.T) {
	sale := Sale{Items: []SaleItem{
		{Quantity: 3, UnitPrice: dec("10.00"), CostPrice: dec("6.00")},
		{Quantity: 2, UnitPrice: dec("5.00"), CostPrice: dec("3.00")},
	}}
	assert.True(t, sale.TotalProfit().Equal(dec("16")))
	assert.True(t, sale.TotalCost().Equal(dec("24")))
}

func TestSaleTotalsNoItems(t *testing.T) {
	var sale Sale
	assert.True(t, sale.TotalProfit().IsZero())
	assert.True(t, sale.TotalCost().IsZero())
}
