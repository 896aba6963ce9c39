package usecase

import "github.com/shopspring/decimal"

type PriceLine struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

type Totals struct {
	Subtotals  []decimal.Decimal
	Total      decimal.Decimal
	Discount   decimal.Decimal
	FinalValue decimal.Decimal
}

// ComputeTotals calcula subtotal por linha, total e valor final (total - desconto).
// Não valida entradas nem limita o valor final: desconto acima do total gera valor negativo.
func ComputeTotals(lines []PriceLine, discount decimal.Decimal) Totals {
	t := Totals{Subtotals: make([]decimal.Decimal, len(lines)), Total: decimal.Zero, Discount: discount}
	for i, l := range lines {
		sub := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		t.Subtotals[i] = sub
		t.Total = t.Total.Add(sub)
	}
	t.FinalValue = t.Total.Sub(discount)
	return t
}
