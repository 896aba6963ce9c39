package domain

import "time"

type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Email     string    `gorm:"size:255" json:"email"`
	Phone     string    `gorm:"size:20" json:"phone"`
	TaxID     string    `gorm:"size:20" json:"tax_id"` // CPF ou CNPJ
	Address   string    `gorm:"type:text" json:"address"`
	City      string    `gorm:"size:100" json:"city"`
	State     string    `gorm:"size:2" json:"state"`
	ZipCode   string    `gorm:"size:10" json:"zip_code"`
	Notes     string    `gorm:"type:text" json:"notes"`
	Sales     []Sale    `json:"sales,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CustomerFilter struct {
	Query    string
	Page     int
	PageSize int
}
