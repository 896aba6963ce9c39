package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendafacil/vendafacil/internal/domain"
)

// fakeReports filtra listas em memória pelos mesmos critérios do repositório.
type fakeReports struct {
	sales    []domain.Sale
	insts    []domain.Installment
	products []domain.Product
	sold     map[uint]int
}

func (f *fakeReports) Counts(context.Context) (int64, int64, int64, error) {
	return 3, int64(len(f.products)), int64(len(f.sales)), nil
}

func (f *fakeReports) SalesInRange(_ context.Context, from, to time.Time) ([]domain.Sale, error) {
	var out []domain.Sale
	for _, s := range f.sales {
		if !s.SaleDate.Before(from) && !s.SaleDate.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeReports) RecentSales(_ context.Context, limit int) ([]domain.Sale, error) {
	if len(f.sales) < limit {
		return f.sales, nil
	}
	return f.sales[:limit], nil
}

func (f *fakeReports) InstallmentsDueInRange(_ context.Context, from, to time.Time) ([]domain.Installment, error) {
	var out []domain.Installment
	for _, i := range f.insts {
		if !i.DueDate.Before(from) && !i.DueDate.After(to) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeReports) InstallmentsPaidInRange(_ context.Context, from, to time.Time) ([]domain.Installment, error) {
	var out []domain.Installment
	for _, i := range f.insts {
		if i.Status == domain.InstallmentStatusPaid && i.PaymentDate != nil && !i.PaymentDate.Before(from) && !i.PaymentDate.After(to) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeReports) OpenInstallments(context.Context) ([]domain.Installment, error) {
	var out []domain.Installment
	for _, i := range f.insts {
		if i.Status != domain.InstallmentStatusPaid {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeReports) Products(context.Context) ([]domain.Product, error) { return f.products, nil }

func (f *fakeReports) SoldQuantities(context.Context) (map[uint]int, error) { return f.sold, nil }

func sale(id, customer uint, when time.Time, final string, status domain.SaleStatus, items ...domain.SaleItem) domain.Sale {
	return domain.Sale{
		ID:         id,
		CustomerID: customer,
		Customer:   &domain.Customer{ID: customer, Name: map[uint]string{1: "Ana", 2: "Bruno"}[customer]},
		SaleDate:   when,
		Total:      d(final),
		FinalValue: d(final),
		Status:     status,
		Items:      items,
	}
}

func item(product uint, name string, qty int, subtotal string) domain.SaleItem {
	return domain.SaleItem{ProductID: product, Product: &domain.Product{ID: product, Name: name}, Quantity: qty, Subtotal: d(subtotal)}
}

func newReportUC() *ReportUC {
	paidOn := date(2024, time.March, 5)
	repo := &fakeReports{
		sales: []domain.Sale{
			sale(1, 1, date(2024, time.February, 10), "100.00", domain.SaleStatusPaid, item(1, "Caneta", 10, "100.00")),
			sale(2, 1, date(2024, time.March, 4), "60.00", domain.SaleStatusPending, item(1, "Caneta", 2, "20.00"), item(2, "Caderno", 1, "40.00")),
			sale(3, 2, date(2024, time.March, 12), "90.00", domain.SaleStatusPending, item(2, "Caderno", 3, "90.00")),
			sale(4, 2, date(2024, time.March, 13), "500.00", domain.SaleStatusCancelled, item(2, "Caderno", 5, "500.00")),
		},
		insts: []domain.Installment{
			{ID: 1, SaleID: 2, Number: 1, Amount: d("30.00"), DueDate: date(2024, time.March, 4), Status: domain.InstallmentStatusPaid, PaymentDate: &paidOn},
			{ID: 2, SaleID: 2, Number: 2, Amount: d("30.00"), DueDate: date(2024, time.March, 10), Status: domain.InstallmentStatusPending},
			{ID: 3, SaleID: 3, Number: 1, Amount: d("45.00"), DueDate: date(2024, time.March, 18), Status: domain.InstallmentStatusPending},
			{ID: 4, SaleID: 3, Number: 2, Amount: d("45.00"), DueDate: date(2024, time.April, 18), Status: domain.InstallmentStatusPending},
		},
		products: []domain.Product{
			{ID: 1, Name: "Caneta", Price: d("10.00"), Stock: 3, Active: true, Category: "Escritório"},
			{ID: 2, Name: "Caderno", Price: d("30.00"), Stock: 20, Active: true, Category: "Escritório"},
			{ID: 3, Name: "Mochila", Price: d("100.00"), Stock: 1, Active: false, Category: "Bolsas"},
		},
		sold: map[uint]int{1: 12, 2: 4},
	}
	return &ReportUC{Reports: repo, Clock: domain.FixedClock(time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)), LowStock: 5}
}

func TestReportUC_Dashboard(t *testing.T) {
	uc := newReportUC()
	got, err := uc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, got.SalesThisMonth, "cancelled sale excluded")
	assert.True(t, got.MonthlyRevenue.Equal(d("150.00")))
	assert.True(t, got.LastMonthRevenue.Equal(d("100.00")))
	assert.True(t, got.Growth.Equal(d("50")))
	assert.Equal(t, 1, got.OverdueInstallments)
	assert.Equal(t, 2, got.PendingInstallments)
	require.Len(t, got.Upcoming, 1)
	assert.EqualValues(t, 3, got.Upcoming[0].ID)

	require.Len(t, got.Last7Days, 7)
	assert.Equal(t, "2024-03-09", got.Last7Days[0].Period)
	assert.Equal(t, "2024-03-15", got.Last7Days[6].Period)
	assert.Equal(t, 1, got.Last7Days[3].Count)
	assert.True(t, got.Last7Days[3].Total.Equal(d("90.00")))

	require.NotEmpty(t, got.TopProducts)
	assert.Equal(t, "Caderno", got.TopProducts[0].Name)
	require.Len(t, got.LowStock, 1)
	assert.Equal(t, "Caneta", got.LowStock[0].Name, "inactive products are not listed")
}

func TestReportUC_SalesReport(t *testing.T) {
	uc := newReportUC()
	ctx := context.Background()
	from, to := date(2024, time.February, 1), date(2024, time.March, 31)

	got, err := uc.SalesReport(ctx, &from, &to, GroupByMonth)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Count)
	assert.True(t, got.Total.Equal(d("250.00")))
	assert.True(t, got.AverageTicket.Equal(d("83.33")))
	require.Len(t, got.Series, 2)
	assert.Equal(t, "2024-02", got.Series[0].Period)
	assert.Equal(t, "2024-03", got.Series[1].Period)
	assert.Equal(t, 2, got.Series[1].Count)
	assert.Equal(t, 1, got.ByStatus[domain.SaleStatusCancelled].Count)
	assert.Len(t, got.Sales, 4)
	assert.Equal(t, "Caneta", got.TopProducts[0].Name)
	assert.Equal(t, 12, got.TopProducts[0].Quantity)
	assert.Equal(t, "Ana", got.TopCustomers[0].Name)
	assert.True(t, got.TopCustomers[0].Total.Equal(d("160.00")))

	weekly, err := uc.SalesReport(ctx, &from, &to, GroupByWeek)
	require.NoError(t, err)
	assert.Equal(t, "2024-W06", weekly.Series[0].Period)

	_, err = uc.SalesReport(ctx, &from, &to, "year")
	assert.ErrorIs(t, err, domain.ErrInvalidGrouping)

	_, err = uc.SalesReport(ctx, &to, &from, GroupByDay)
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	current, err := uc.SalesReport(ctx, nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 1), current.Period.Start)
	assert.Equal(t, date(2024, time.March, 31), current.Period.End)
	assert.Equal(t, GroupByDay, current.GroupBy)
	assert.Equal(t, 2, current.Count)
}

func TestReportUC_FinancialReport(t *testing.T) {
	uc := newReportUC()
	got, err := uc.FinancialReport(context.Background(), nil, nil)
	require.NoError(t, err)

	assert.True(t, got.Received.Equal(d("30.00")))
	assert.Equal(t, 1, got.ReceivedCount)
	assert.True(t, got.Pending.Equal(d("75.00")))
	assert.Equal(t, 2, got.PendingCount)
	assert.True(t, got.Overdue.Equal(d("30.00")))
	assert.Equal(t, 1, got.OverdueCount)
	require.Len(t, got.CashFlow, 1)
	assert.True(t, got.CashFlow[0].Expected.Equal(d("105.00")))
	assert.Len(t, got.Upcoming, 1)
}

func TestReportUC_InventoryReport(t *testing.T) {
	uc := newReportUC()
	got, err := uc.InventoryReport(context.Background())
	require.NoError(t, err)

	assert.True(t, got.StockValue.Equal(d("730.00")))
	require.Len(t, got.TopSelling, 2)
	assert.Equal(t, "Caneta", got.TopSelling[0].Name)
	require.Len(t, got.NoMovement, 1)
	assert.Equal(t, "Mochila", got.NoMovement[0].Name)
	require.Len(t, got.ByCategory, 2)
	assert.Equal(t, "Bolsas", got.ByCategory[0].Category)
	assert.Equal(t, 2, got.ByCategory[1].Products)
	assert.Equal(t, 23, got.ByCategory[1].Stock)
}

func TestGrowth(t *testing.T) {
	assert.True(t, growth(d("0"), d("0")).IsZero())
	assert.True(t, growth(d("10"), d("0")).Equal(d("100")))
	assert.True(t, growth(d("50"), d("100")).Equal(d("-50")))
}
