package models

// Course is a catalog entry.
type Course struct {
	ID            int64   `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	Price         float64 `db:"price" json:"price"`
	Description   string  `db:"description" json:"description"`
	DurationHours int     `db:"duration_hours" json:"duration_hours"`
	IsActive      bool    `db:"is_active" json:"is_active"`
}
