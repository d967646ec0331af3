package dto

import "github.com/whrcat/cpplearn-api/internal/models"

// CapabilityRadarResponse is the six-dimension skill profile shown on the
// dashboard radar chart.
type CapabilityRadarResponse struct {
	BasicSyntax       int `json:"basic_syntax"`
	MemoryManagement  int `json:"memory_management"`
	DataStructures    int `json:"data_structures"`
	OOP               int `json:"oop"`
	STLLibrary        int `json:"stl_library"`
	SystemProgramming int `json:"system_programming"`
}

// NewCapabilityRadarResponse builds a radar DTO from a profile model.
func NewCapabilityRadarResponse(profile models.CapabilityProfile) CapabilityRadarResponse {
	return CapabilityRadarResponse{
		BasicSyntax:       profile.BasicSyntax,
		MemoryManagement:  profile.MemoryManagement,
		DataStructures:    profile.DataStructures,
		OOP:               profile.OOP,
		STLLibrary:        profile.STLLibrary,
		SystemProgramming: profile.SystemProgramming,
	}
}
