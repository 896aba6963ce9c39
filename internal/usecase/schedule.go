package usecase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendafacil/vendafacil/internal/domain"
)

// ScheduleTolerance é a diferença máxima aceita entre a soma das parcelas e o valor final.
var ScheduleTolerance = decimal.New(1, -2)

type ManualInstallment struct {
	Amount  decimal.Decimal
	DueDate time.Time
}

type InstallmentSpec struct {
	Number  int
	Amount  decimal.Decimal
	DueDate time.Time
}

// EqualSplit divide o valor final em count parcelas mensais. Cada parcela recebe o valor
// truncado em centavos e a última absorve o resto, de modo que a soma é exata.
func EqualSplit(final decimal.Decimal, count int, saleDate time.Time) ([]InstallmentSpec, error) {
	if count < 1 {
		return nil, domain.NewValidationError("installment_count", domain.ErrInvalidInstallment)
	}
	base := final.Div(decimal.NewFromInt(int64(count))).Truncate(2)
	out := make([]InstallmentSpec, count)
	acc := decimal.Zero
	for i := 0; i < count; i++ {
		amount := base
		if i == count-1 {
			amount = final.Sub(acc)
		}
		acc = acc.Add(amount)
		out[i] = InstallmentSpec{
			Number:  i + 1,
			Amount:  amount,
			DueDate: AddMonths(saleDate, i+1),
		}
	}
	return out, nil
}

// ManualSchedule numera as parcelas informadas na ordem recebida, sem recalcular valores.
func ManualSchedule(in []ManualInstallment) []InstallmentSpec {
	out := make([]InstallmentSpec, len(in))
	for i, m := range in {
		out[i] = InstallmentSpec{Number: i + 1, Amount: m.Amount, DueDate: domain.DateOnly(m.DueDate)}
	}
	return out
}

func ScheduleSum(specs []InstallmentSpec) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range specs {
		sum = sum.Add(s.Amount)
	}
	return sum
}

// CheckScheduleSum falha quando a soma das parcelas se afasta do valor final além da tolerância.
func CheckScheduleSum(specs []InstallmentSpec, final decimal.Decimal) error {
	if len(specs) == 0 {
		return nil
	}
	sum := ScheduleSum(specs)
	if sum.Sub(final).Abs().GreaterThan(ScheduleTolerance) {
		return &domain.InstallmentMismatchError{Expected: final, Got: sum}
	}
	return nil
}

// specsOf converte parcelas gravadas de volta em especificações para conferência da soma.
func specsOf(insts []domain.Installment) []InstallmentSpec {
	out := make([]InstallmentSpec, len(insts))
	for i, inst := range insts {
		out[i] = InstallmentSpec{Number: inst.Number, Amount: inst.Amount, DueDate: inst.DueDate}
	}
	return out
}

// AddMonths soma n meses mantendo o dia do mês, limitado ao último dia de meses mais curtos.
func AddMonths(t time.Time, n int) time.Time {
	d := domain.DateOnly(t)
	first := time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	day := d.Day()
	if day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func toInstallments(specs []InstallmentSpec) []domain.Installment {
	out := make([]domain.Installment, len(specs))
	for i, s := range specs {
		out[i] = domain.Installment{
			Number:  s.Number,
			Amount:  s.Amount,
			DueDate: s.DueDate,
			Status:  domain.InstallmentStatusPending,
		}
	}
	return out
}
