package dto

import (
	"time"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
)

// UploadMetadata is the optional JSON carried in the metadata form field.
type UploadMetadata struct {
	Description *string `json:"description"`
}

// MediaResponse is the DTO for media metadata. The payload is served
// separately from URL.
type MediaResponse struct {
	ID        string                 `json:"id"`
	OwnerID   string                 `json:"ownerId"`
	Type      entity.MediaCategory   `json:"type"`
	MimeType  string                 `json:"mimeType"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  entity.MediaAttributes `json:"metadata"`
	URL       string                 `json:"url"`
}

func ToMediaResponse(m entity.Media) MediaResponse {
	return MediaResponse{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Type:      m.Category,
		MimeType:  m.MimeType,
		CreatedAt: m.CreatedAt,
		Metadata:  m.Attributes,
		URL:       mediaref.Encode(m.ID),
	}
}

func ToMediaListResponse(list []*entity.Media) []MediaResponse {
	out := make([]MediaResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMediaResponse(*m))
	}
	return out
}
