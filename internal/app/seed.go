package app

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vendafacil/vendafacil/internal/usecase"
)

func (a *App) seed(ctx context.Context) error {
	products := []usecase.ProductInput{
		{Name: "Camiseta Básica", Category: "Vestuário", Price: decimal.RequireFromString("39.90"), Stock: 50},
		{Name: "Calça Jeans", Category: "Vestuário", Price: decimal.RequireFromString("129.90"), Stock: 20},
		{Name: "Tênis Casual", Category: "Calçados", Price: decimal.RequireFromString("249.00"), Stock: 8},
		{Name: "Boné", Category: "Acessórios", Price: decimal.RequireFromString("59.90"), Stock: 3},
		{Name: "Mochila", Category: "Acessórios", Price: decimal.RequireFromString("189.00"), Stock: 12},
	}
	for _, p := range products {
		if _, err := a.ProductUC.Create(ctx, p); err != nil {
			return err
		}
	}
	customers := []usecase.CustomerInput{
		{Name: "Maria Oliveira", Email: "maria@example.com", Phone: "(11) 98888-0001", City: "São Paulo", State: "SP"},
		{Name: "João Santos", Email: "joao@example.com", Phone: "(21) 97777-0002", City: "Rio de Janeiro", State: "RJ"},
		{Name: "Ana Souza", Phone: "(31) 96666-0003", City: "Belo Horizonte", State: "MG"},
	}
	for _, c := range customers {
		if _, err := a.CustomerUC.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
