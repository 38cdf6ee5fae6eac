package model

import (
	"time"

	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Automation is one downloadable workflow template of the catalog.
// Either WorkflowJSON or FileURL carries the payload.
type Automation struct {
	ID           string                      `json:"id" gorm:"primaryKey;size:36"`
	Title        string                      `json:"title" gorm:"size:255;not null"`
	Description  string                      `json:"description" gorm:"type:text"`
	Category     string                      `json:"category" gorm:"size:100;index"`
	Difficulty   Difficulty                  `json:"difficulty" gorm:"size:20"`
	Tags         datatypes.JSONSlice[string] `json:"tags"`
	Rating       float64                     `json:"rating" gorm:"default:0"`
	Downloads    int64                       `json:"downloads" gorm:"not null;default:0"`
	WorkflowJSON datatypes.JSON              `json:"workflow_json,omitempty"`
	FileURL      string                      `json:"file_url,omitempty" gorm:"size:1024"`
	CreatedAt    time.Time                   `json:"created_at" gorm:"index"`
}

func (Automation) TableName() string {
	return "automations"
}

// Analysis is the classifier output used to create an Automation from an
// uploaded workflow.
type Analysis struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
	Tags        []string   `json:"tags"`
}
