package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is an installation record for a single shop. The access token is
// needed to call the commerce Admin API on the shop's behalf and never leaves
// the backend.
type Store struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Shop        string             `bson:"shop" json:"shop"`
	AccessToken string             `bson:"accessToken" json:"-"`
	InstalledAt time.Time          `bson:"installedAt" json:"installedAt"`
	Settings    StoreSettings      `bson:"settings" json:"settings"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type StoreSettings struct {
	DefaultPosition string `bson:"defaultPosition" json:"defaultPosition" validate:"omitempty,oneof=top bottom above-price below-title"`
	DefaultColor    string `bson:"defaultColor" json:"defaultColor" validate:"omitempty,hexcolor"`
}

func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		DefaultPosition: "above-price",
		DefaultColor:    "#FF0000",
	}
}
