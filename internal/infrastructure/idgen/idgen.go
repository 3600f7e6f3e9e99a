package idgen

import (
	"github.com/google/uuid"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/contract"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Generator hands out post ids (UUIDs) and media/user ids (ObjectID hex).
type Generator struct{}

// NewGenerator creates a new id generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// NewUUID generates a new UUID.
func (g *Generator) NewUUID() string {
	return uuid.New().String()
}

// NewObjectID generates a lowercase 24 character hex id.
func (g *Generator) NewObjectID() string {
	return primitive.NewObjectID().Hex()
}

var (
	_ contract.IUUIDGenerator     = (*Generator)(nil)
	_ contract.IObjectIDGenerator = (*Generator)(nil)
)
