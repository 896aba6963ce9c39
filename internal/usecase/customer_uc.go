package usecase

import (
	"context"
	"strings"

	"github.com/vendafacil/vendafacil/internal/domain"
)

type CustomerInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"omitempty,email,max=255"`
	Phone   string `json:"phone" validate:"max=20"`
	TaxID   string `json:"tax_id" validate:"max=20"`
	Address string `json:"address"`
	City    string `json:"city" validate:"max=100"`
	State   string `json:"state" validate:"omitempty,len=2"`
	ZipCode string `json:"zip_code" validate:"max=10"`
	Notes   string `json:"notes"`
}

func (in CustomerInput) apply(c *domain.Customer) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = in.Email
	c.Phone = in.Phone
	c.TaxID = in.TaxID
	c.Address = in.Address
	c.City = in.City
	c.State = in.State
	c.ZipCode = in.ZipCode
	c.Notes = in.Notes
}

type CustomerUC struct {
	Customers domain.CustomerRepo
}

func (uc *CustomerUC) Create(ctx context.Context, in CustomerInput) (*domain.Customer, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	c := &domain.Customer{}
	in.apply(c)
	if err := uc.Customers.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *CustomerUC) Update(ctx context.Context, id uint, in CustomerInput) (*domain.Customer, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	c, err := uc.Customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	if err := uc.Customers.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get devolve o cliente com o histórico de vendas, itens e parcelas.
func (uc *CustomerUC) Get(ctx context.Context, id uint) (*domain.Customer, error) {
	return uc.Customers.FindWithSales(ctx, id)
}

func (uc *CustomerUC) List(ctx context.Context, f domain.CustomerFilter) ([]domain.Customer, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 15
	}
	return uc.Customers.List(ctx, f)
}

func (uc *CustomerUC) Delete(ctx context.Context, id uint) error {
	return uc.Customers.Delete(ctx, id)
}
