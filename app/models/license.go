package models

import (
	"time"
)

// License is one issued certificate record. Records are append-mostly: created
// on submission, never updated, removed only by explicit deletion.
type License struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	EventID uint  `gorm:"index;not null" json:"event_id"`
	Event   Event `gorm:"foreignKey:EventID" json:"-"`
	// ReceiptNumber is the zero-padded per-event display counter ("0007").
	// Scoped to the event, not globally unique.
	ReceiptNumber string `gorm:"type:varchar(20);index" json:"receipt_number"`
	// pet / owner fields
	PetName      string     `gorm:"type:varchar(100);not null" json:"pet_name"`
	OwnerName    string     `gorm:"type:varchar(100);not null" json:"owner_name"`
	AnimalType   string     `gorm:"type:varchar(50)" json:"animal_type,omitempty"`
	Breed        string     `gorm:"type:varchar(100)" json:"breed,omitempty"`
	Color        string     `gorm:"type:varchar(50)" json:"color,omitempty"`
	BirthDate    *time.Time `gorm:"type:date" json:"birth_date,omitempty"`
	Gender       string     `gorm:"type:varchar(10)" json:"gender,omitempty"`
	FavoriteFood string     `gorm:"type:varchar(100)" json:"favorite_food,omitempty"`
	FavoriteWord string     `gorm:"type:varchar(200)" json:"favorite_word,omitempty"`
	MicrochipNo  string     `gorm:"type:varchar(50)" json:"microchip_no,omitempty"`
	// stored artifacts; the keys are kept so blobs can be removed on delete
	LicenseImageURL  string    `gorm:"type:text;not null" json:"license_image_url"`
	OriginalImageURL string    `gorm:"type:text" json:"original_image_url,omitempty"`
	LicenseKey       string    `gorm:"type:varchar(500)" json:"-"`
	OriginalKey      string    `gorm:"type:varchar(500)" json:"-"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}
