package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Property struct {
	gorm.Model
	OwnerID      uint    `json:"ownerID" gorm:"index;not null"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	AddressLine1 string  `json:"addressLine1"`
	AddressLine2 string  `json:"addressLine2"`
	City         string  `json:"city"`
	State        string  `json:"state"`
	Zip          string  `json:"zip"`
	Country      string  `json:"country"`
	Lat          float32 `json:"lat"`
	Lng          float32 `json:"lng"`
	Capacity     int     `json:"capacity"`
	Bedrooms     int     `json:"bedrooms"`
	Beds         int     `json:"beds"`
	Bathrooms    float32 `json:"bathrooms"`
	NightlyPrice float32 `json:"nightlyPrice"`
	Currency     string  `json:"currency"`
	Amenities    string  `json:"amenities"` // JSON array of strings
	Images       string  `json:"images"`    // JSON array of URLs
	Owner        User    `json:"owner" gorm:"foreignKey:OwnerID;references:ID"`

	// Lifecycle. Transitions go through the table in PropertyStatus.go only.
	Status      string     `json:"status" gorm:"type:varchar(32);default:'draft';index"`
	ReviewNotes string     `json:"reviewNotes" gorm:"type:text"`
	SubmittedAt *time.Time `json:"submittedAt"`
	ApprovedAt  *time.Time `json:"approvedAt" gorm:"index"`

	// External booking provider state. Beds24PropertyID is set if and only if
	// the property is in a post-enlistment status.
	Beds24PropertyID *string        `json:"beds24PropertyID" gorm:"size:64"`
	SyncStatus       string         `json:"syncStatus" gorm:"type:varchar(16);default:''"`
	SyncError        string         `json:"syncError" gorm:"type:text"`
	SyncMetadata     datatypes.JSON `json:"syncMetadata" gorm:"type:jsonb"`
	EnlistedAt       *time.Time     `json:"enlistedAt"`
}

// Custom JSON marshaling to convert Images and Amenities strings to arrays
func (p *Property) MarshalJSON() ([]byte, error) {
	type Alias Property
	aux := &struct {
		Images    []string `json:"images"`
		Amenities []string `json:"amenities"`
		Owner     *User    `json:"owner,omitempty"`
		*Alias
	}{
		Images:    []string{},
		Amenities: []string{},
		Owner:     nil,
		Alias:     (*Alias)(p),
	}

	if p.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(p.Images), &images); err == nil {
			aux.Images = images
		}
	}

	if p.Amenities != "" {
		var amenities []string
		if err := json.Unmarshal([]byte(p.Amenities), &amenities); err == nil {
			aux.Amenities = amenities
		}
	}

	// Only include owner if loaded, without its Properties to avoid a cycle
	if p.Owner.ID > 0 {
		ownerCopy := p.Owner
		ownerCopy.Properties = nil
		aux.Owner = &ownerCopy
	}

	return json.Marshal(aux)
}
