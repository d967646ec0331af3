package models

import "time"

// CapabilityProfile stores the six skill-dimension scores tracked per user.
// Each value stays within [0,100]; the profile is only ever mutated by the
// capability service's blended update.
type CapabilityProfile struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	BasicSyntax       int       `gorm:"not null;default:0" json:"basic_syntax"`
	MemoryManagement  int       `gorm:"not null;default:0" json:"memory_management"`
	DataStructures    int       `gorm:"not null;default:0" json:"data_structures"`
	OOP               int       `gorm:"not null;default:0" json:"oop"`
	STLLibrary        int       `gorm:"not null;default:0" json:"stl_library"`
	SystemProgramming int       `gorm:"not null;default:0" json:"system_programming"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Scores returns the six dimensions in their canonical order.
func (p CapabilityProfile) Scores() [6]int {
	return [6]int{p.BasicSyntax, p.MemoryManagement, p.DataStructures, p.OOP, p.STLLibrary, p.SystemProgramming}
}
