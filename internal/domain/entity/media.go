package entity

import "time"

// MediaCategory classifies what an uploaded image is used for.
type MediaCategory string

const (
	MediaCategoryProfile MediaCategory = "profile"
	MediaCategoryPost    MediaCategory = "post"
	MediaCategoryFeed    MediaCategory = "feed"
)

// Valid reports whether c is one of the fixed categories.
func (c MediaCategory) Valid() bool {
	switch c {
	case MediaCategoryProfile, MediaCategoryPost, MediaCategoryFeed:
		return true
	}
	return false
}

// MediaCategories lists every category in a stable order.
func MediaCategories() []MediaCategory {
	return []MediaCategory{MediaCategoryProfile, MediaCategoryPost, MediaCategoryFeed}
}

// MediaAttributes are derived from the normalized payload at creation.
type MediaAttributes struct {
	Width       int     `bson:"width" json:"width"`
	Height      int     `bson:"height" json:"height"`
	Size        int     `bson:"size" json:"size"`
	Description *string `bson:"description,omitempty" json:"description,omitempty"`
}

// Media is an immutable stored image. Payload is omitted from list projections.
type Media struct {
	ID         string          `bson:"_id" json:"id"`
	OwnerID    string          `bson:"owner_id" json:"ownerId"`
	Category   MediaCategory   `bson:"category" json:"type"`
	Payload    []byte          `bson:"payload,omitempty" json:"-"`
	MimeType   string          `bson:"mime_type" json:"mimeType"`
	Attributes MediaAttributes `bson:"attributes" json:"metadata"`
	CreatedAt  time.Time       `bson:"created_at" json:"createdAt"`
}

// NormalizedImage is the output of the image normalizer.
type NormalizedImage struct {
	Data     []byte
	MimeType string
	Width    int
	Height   int
}
