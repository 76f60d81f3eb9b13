package model

import "gorm.io/gorm"

// Gradient is a named pointer to an externally hosted gradient image.
// Names are not unique; ImageURL is the only required field.
type Gradient struct {
	gorm.Model
	Name      string `json:"name"`
	ImageURL  string `json:"imageUrl" gorm:"not null"`
	CreatedBy string `json:"createdBy" gorm:"index"`
}
