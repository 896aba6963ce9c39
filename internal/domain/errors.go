package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("registro não encontrado")
	ErrInUse    = errors.New("registro em uso")

	ErrValidation          = errors.New("dados inválidos")
	ErrInsufficientStock   = errors.New("estoque insuficiente")
	ErrInstallmentMismatch = errors.New("soma das parcelas difere do valor final")
	ErrTransactionFailure  = errors.New("falha na transação")
	ErrStockConflict       = errors.New("estoque alterado por outra operação, tente novamente")
)

// Causas de validação, sempre embrulhadas em ValidationError.
var (
	ErrEmptyItems         = errors.New("a venda precisa de ao menos um item")
	ErrInvalidQuantity    = errors.New("quantidade deve ser maior que zero")
	ErrNegativeAmount     = errors.New("valor não pode ser negativo")
	ErrDiscountExceeds    = errors.New("desconto maior que o total")
	ErrCustomerNotFound   = errors.New("cliente não encontrado")
	ErrProductNotFound    = errors.New("produto não encontrado")
	ErrScheduleConflict   = errors.New("informe parcelas manuais ou quantidade de parcelas, não ambos")
	ErrInvalidDate        = errors.New("data inválida")
	ErrInvalidStatus      = errors.New("status inválido")
	ErrInvalidTransition  = errors.New("transição de status inválida")
	ErrAlreadyPaid        = errors.New("parcela já paga")
	ErrRequired           = errors.New("campo obrigatório")
	ErrInvalidInstallment = errors.New("quantidade de parcelas inválida")
	ErrInvalidGrouping    = errors.New("agrupamento deve ser day, week ou month")
	ErrInvalidPeriod      = errors.New("data final anterior à inicial")
	ErrInvalidWindow      = errors.New("janela deve ser overdue, today ou next_7_days")
	ErrOpenInstallments   = errors.New("venda com parcelas em aberto não pode ser marcada como paga")
	ErrStatusFromSchedule = errors.New("status da venda é definido pelas parcelas")
)

type ValidationError struct {
	Field string
	Err   error
}

func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Err.Error())
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Err} }

type InsufficientStockError struct {
	ProductID uint
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("estoque insuficiente para o produto %d: disponível %d, solicitado %d", e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

type InstallmentMismatchError struct {
	Expected decimal.Decimal
	Got      decimal.Decimal
}

func (e *InstallmentMismatchError) Error() string {
	return fmt.Sprintf("soma das parcelas %s difere do valor final %s", e.Got.StringFixed(2), e.Expected.StringFixed(2))
}

func (e *InstallmentMismatchError) Unwrap() error { return ErrInstallmentMismatch }

// TransactionError envolve falhas de persistência ocorridas dentro de uma transação.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() []error { return []error{ErrTransactionFailure, e.Err} }
