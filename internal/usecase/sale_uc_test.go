package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendafacil/vendafacil/internal/domain"
	"github.com/vendafacil/vendafacil/internal/usecase"
)

func TestSaleUC_CreateSimpleSale(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "Maria")
	p := e.product(t, "Camiseta", "10.00", 5)

	uid := uint(7)
	s, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		CustomerID: c.ID,
		UserID:     &uid,
		SaleDate:   day(2024, time.January, 15),
		Items:      []usecase.SaleItemInput{{ProductID: p.ID, Quantity: 2, UnitPrice: money("10.00")}},
	})
	require.NoError(t, err)

	assert.True(t, s.Total.Equal(money("20.00")))
	assert.True(t, s.FinalValue.Equal(money("20.00")))
	assert.Equal(t, domain.SaleStatusPending, s.Status)
	require.NotNil(t, s.UserID)
	assert.Equal(t, uid, *s.UserID)
	require.Len(t, s.Items, 1)
	assert.True(t, s.Items[0].Subtotal.Equal(money("20.00")))
	assert.Equal(t, "Camiseta", s.Items[0].Product.Name)
	assert.Empty(t, s.Installments)
	assert.Equal(t, 3, e.stock(t, p.ID))
}

func TestSaleUC_CreateWithEqualSplit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "João")
	p := e.product(t, "Relógio", "100.00", 2)

	s, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		CustomerID:       c.ID,
		SaleDate:         day(2024, time.January, 31),
		Items:            []usecase.SaleItemInput{{ProductID: p.ID, Quantity: 1, UnitPrice: money("100.00")}},
		InstallmentCount: 3,
	})
	require.NoError(t, err)
	require.Len(t, s.Installments, 3)

	want := []struct {
		amount string
		due    time.Time
	}{
		{"33.33", day(2024, time.February, 29)},
		{"33.33", day(2024, time.March, 31)},
		{"33.34", day(2024, time.April, 30)},
	}
	for i, inst := range s.Installments {
		assert.Equal(t, i+1, inst.Number)
		assert.True(t, inst.Amount.Equal(money(want[i].amount)), "parcela %d: %s", i+1, inst.Amount)
		assert.True(t, inst.DueDate.Equal(want[i].due), "parcela %d: %s", i+1, inst.DueDate)
		assert.Equal(t, domain.InstallmentStatusPending, inst.Status)
	}
}

func TestSaleUC_CreateWithManualInstallments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "Ana")
	p := e.product(t, "Bolsa", "150.00", 4)

	in := usecase.CreateSaleInput{
		CustomerID: c.ID,
		SaleDate:   day(2024, time.February, 1),
		Discount:   money("10.00"),
		Items:      []usecase.SaleItemInput{{ProductID: p.ID, Quantity: 2, UnitPrice: money("150.00")}},
		Installments: []usecase.ManualInstallment{
			{Amount: money("145.00"), DueDate: day(2024, time.March, 1)},
			{Amount: money("145.00"), DueDate: day(2024, time.April, 1)},
		},
	}
	s, err := e.sales.Create(ctx, in)
	require.NoError(t, err)
	assert.True(t, s.FinalValue.Equal(money("290.00")))
	require.Len(t, s.Installments, 2)
	assert.True(t, s.Installments[1].DueDate.Equal(day(2024, time.April, 1)))

	in.Installments[1].Amount = money("100.00")
	_, err = e.sales.Create(ctx, in)
	var me *domain.InstallmentMismatchError
	require.ErrorAs(t, err, &me)
	assert.True(t, me.Expected.Equal(money("290.00")))
	assert.True(t, me.Got.Equal(money("245.00")))
	assert.Equal(t, 2, e.stock(t, p.ID), "rejected sale leaves stock alone")
}

func TestSaleUC_CreateInsufficientStock(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "Pedro")
	p := e.product(t, "Tênis", "200.00", 3)

	_, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		CustomerID:       c.ID,
		SaleDate:         day(2024, time.March, 1),
		Items:            []usecase.SaleItemInput{{ProductID: p.ID, Quantity: 5, UnitPrice: money("200.00")}},
		InstallmentCount: 2,
	})
	var se *domain.InsufficientStockError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 3, se.Available)
	assert.Equal(t, 5, se.Requested)
	assert.Equal(t, 3, e.stock(t, p.ID))

	list, total, err := e.sales.List(ctx, domain.SaleFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestSaleUC_CreateValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "Lúcia")
	p := e.product(t, "Caneca", "20.00", 10)
	item := []usecase.SaleItemInput{{ProductID: p.ID, Quantity: 1, UnitPrice: money("20.00")}}

	tests := []struct {
		name  string
		in    usecase.CreateSaleInput
		cause error
	}{
		{"no items", usecase.CreateSaleInput{CustomerID: c.ID, SaleDate: today}, domain.ErrEmptyItems},
		{"zero quantity", usecase.CreateSaleInput{CustomerID: c.ID, SaleDate: today,
			Items: []usecase.SaleItemInput{{ProductID: p.ID, Quantity: 0, UnitPrice: money("20.00")}}}, domain.ErrInvalidQuantity},
		{"negative price", usecase.CreateSaleInput{CustomerID: c.ID, SaleDate: today,
			Items: []usecase.SaleItemInput{{ProductID: p.ID, Quantity: 1, UnitPrice: money("-1.00")}}}, domain.ErrNegativeAmount},
		{"negative discount", usecase.CreateSaleInput{CustomerID: c.ID, SaleDate: today, Items: item, Discount: money("-1")}, domain.ErrNegativeAmount},
		{"discount above total", usecase.CreateSaleInput{CustomerID: c.ID, SaleDate: today, Items: item, Discount: money("20.01")}, domain.ErrDiscountExceeds},
		{"missing date", usecase.CreateSaleInput{CustomerID: c.ID, Items: item}, domain.ErrInvalidDate},
		{"missing customer", usecase.CreateSaleInput{SaleDate: today, Items: item}, domain.ErrRequired},
		{"unknown customer", usecase.CreateSaleInput{CustomerID: 999, SaleDate: today, Items: item}, domain.ErrCustomerNotFound},
		{"unknown product", usecase.CreateSaleInput{CustomerID: c.ID, SaleDate: today,
			Items: []usecase.SaleItemInput{{ProductID: 999, Quantity: 1, UnitPrice: money("1.00")}}}, domain.ErrProductNotFound},
		{"both schedules", usecase.CreateSaleInput{CustomerID: c.ID, SaleDate: today, Items: item, InstallmentCount: 2,
			Installments: []usecase.ManualInstallment{{Amount: money("20.00"), DueDate: today}}}, domain.ErrScheduleConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.sales.Create(ctx, tt.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorIs(t, err, tt.cause)
		})
	}
	assert.Equal(t, 10, e.stock(t, p.ID))
}

func TestSaleUC_DiscountEqualToTotal(t *testing.T) {
	e := newEnv(t)
	c := e.customer(t, "Brinde")
	p := e.product(t, "Chaveiro", "5.00", 10)

	s, err := e.sales.Create(context.Background(), usecase.CreateSaleInput{
		CustomerID: c.ID,
		SaleDate:   today,
		Discount:   money("5.00"),
		Items:      []usecase.SaleItemInput{{ProductID: p.ID, Quantity: 1, UnitPrice: money("5.00")}},
	})
	require.NoError(t, err)
	assert.True(t, s.FinalValue.IsZero())
}

func TestSaleUC_UpdateAndCancel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "Rafael")
	other := e.customer(t, "Sônia")
	p := e.product(t, "Jaqueta", "300.00", 5)

	s, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		CustomerID: c.ID,
		SaleDate:   day(2024, time.March, 1),
		Items:      []usecase.SaleItemInput{{ProductID: p.ID, Quantity: 2, UnitPrice: money("300.00")}},
	})
	require.NoError(t, err)

	upd := usecase.UpdateSaleInput{
		CustomerID: other.ID,
		SaleDate:   day(2024, time.March, 2),
		Discount:   money("50.00"),
		Notes:      "desconto à vista",
		Status:     domain.SaleStatusPending,
	}
	got, err := e.sales.Update(ctx, s.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, other.ID, got.CustomerID)
	assert.True(t, got.FinalValue.Equal(money("550.00")))

	upd.Discount = money("700.00")
	_, err = e.sales.Update(ctx, s.ID, upd)
	assert.ErrorIs(t, err, domain.ErrDiscountExceeds)

	upd.Discount = money("50.00")
	upd.Status = domain.SaleStatusCancelled
	_, err = e.sales.Update(ctx, s.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, 5, e.stock(t, p.ID))

	upd.Status = domain.SaleStatusPending
	_, err = e.sales.Update(ctx, s.ID, upd)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	upd.Status = "unknown"
	_, err = e.sales.Update(ctx, s.ID, upd)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	require.NoError(t, e.sales.Delete(ctx, s.ID))
	assert.Equal(t, 5, e.stock(t, p.ID))
}

func TestSaleUC_ListRejectsUnknownStatus(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.sales.List(context.Background(), domain.SaleFilter{Status: "open"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestSaleUC_UpdateKeepsScheduleConsistent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "Paula")
	p := e.product(t, "Cadeira", "100.00", 3)

	s, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		CustomerID:       c.ID,
		SaleDate:         day(2024, time.March, 1),
		Items:            []usecase.SaleItemInput{{ProductID: p.ID, Quantity: 1, UnitPrice: money("100.00")}},
		InstallmentCount: 2,
	})
	require.NoError(t, err)

	upd := usecase.UpdateSaleInput{
		CustomerID: c.ID,
		SaleDate:   s.SaleDate,
		Discount:   money("40.00"),
		Status:     domain.SaleStatusPending,
	}
	_, err = e.sales.Update(ctx, s.ID, upd)
	var mismatch *domain.InstallmentMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.Expected.Equal(money("60.00")))
	assert.True(t, mismatch.Got.Equal(money("100.00")))

	upd.Discount = money("0.01")
	got, err := e.sales.Update(ctx, s.ID, upd)
	require.NoError(t, err, "diferença dentro da tolerância")
	assert.True(t, got.FinalValue.Equal(money("99.99")))

	upd.Status = domain.SaleStatusPaid
	_, err = e.sales.Update(ctx, s.ID, upd)
	assert.ErrorIs(t, err, domain.ErrOpenInstallments)
	got, err = e.sales.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusPending, got.Status)

	for _, inst := range s.Installments {
		_, err := e.installments.MarkPaid(ctx, inst.ID, usecase.PayInstallmentInput{PaymentDate: today})
		require.NoError(t, err)
	}

	upd.Notes = "quitada"
	got, err = e.sales.Update(ctx, s.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusPaid, got.Status)

	upd.Status = domain.SaleStatusPending
	_, err = e.sales.Update(ctx, s.ID, upd)
	assert.ErrorIs(t, err, domain.ErrStatusFromSchedule)
}

func TestSaleUC_UpdateWithoutInstallmentsCanBePaid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.customer(t, "Caio")
	p := e.product(t, "Mesa", "250.00", 2)

	s, err := e.sales.Create(ctx, usecase.CreateSaleInput{
		CustomerID: c.ID,
		SaleDate:   day(2024, time.March, 1),
		Items:      []usecase.SaleItemInput{{ProductID: p.ID, Quantity: 1, UnitPrice: money("250.00")}},
	})
	require.NoError(t, err)

	got, err := e.sales.Update(ctx, s.ID, usecase.UpdateSaleInput{
		CustomerID: c.ID,
		SaleDate:   s.SaleDate,
		Discount:   money("10.00"),
		Status:     domain.SaleStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SaleStatusPaid, got.Status)
	assert.True(t, got.FinalValue.Equal(money("240.00")))
}
