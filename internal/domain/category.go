package domain

import (
	"strings"
	"time"
)

// DefaultCategories are seeded as fixed categories for every new owner.
var DefaultCategories = []string{
	"食費",
	"日用品",
	"交通",
	"家賃",
	"光熱費",
	"通信",
	"医療",
	"娯楽",
	"交際",
	"教育",
	"税・保険",
	"服飾",
	"その他",
}

// Category groups expenses and income for reporting.
type Category struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	ID        string
	OwnerID   string
	Name      string
	IsFixed   bool
	IsActive  bool
}

// CategoryPatch lists the fields a partial update may change.
type CategoryPatch struct {
	Name     *string
	IsFixed  *bool
	IsActive *bool
}

// Apply merges the patch into c.
func (c *Category) Apply(p CategoryPatch) {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.IsFixed != nil {
		c.IsFixed = *p.IsFixed
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
	}
}
