package models

import (
	"database/sql/driver"
	"slices"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Roles is stored as a postgres text[] and as its text literal on sqlite.
type Roles []string

func (r Roles) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	return pq.StringArray(r).Value()
}

func (r *Roles) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	*r = Roles(arr)
	return nil
}

func (Roles) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

func (r Roles) Has(role string) bool {
	return slices.Contains(r, role)
}
