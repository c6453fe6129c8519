package model

import "time"

// Task represents a single to-do item.
type Task struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"not null"`
	Completed bool   `gorm:"default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName keeps the schema compatible with existing todo databases.
func (Task) TableName() string { return "todos" }
