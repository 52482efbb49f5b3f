package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID   `json:"id" bson:"_id"`
	Name      string      `json:"name" bson:"name"`
	Slug      string      `json:"slug" bson:"slug"`
	ParentID  *uuid.UUID  `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	Ancestors []uuid.UUID `json:"ancestors,omitempty" bson:"ancestors,omitempty"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}
