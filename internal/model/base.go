package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID fills a zero primary key before insert so the tables do not
// depend on a database-side uuid generator.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (p *Produto) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

func (f *Fornecedor) BeforeCreate(*gorm.DB) error {
	assignID(&f.ID)
	return nil
}

func (m *Material) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}

func (e *EntradaNF) BeforeCreate(*gorm.DB) error {
	assignID(&e.ID)
	return nil
}

func (c *CalculoNF) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}

func (h *HistoricoCalculo) BeforeCreate(*gorm.DB) error {
	assignID(&h.ID)
	return nil
}
