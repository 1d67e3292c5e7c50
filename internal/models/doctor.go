package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Doctor is immutable once registered. Image holds the raw upload and is
// rendered as base64 in JSON.
type Doctor struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	Image       []byte             `bson:"image" json:"image"`
	ContentType string             `bson:"contentType,omitempty" json:"contentType,omitempty"`
	ImageKey    string             `bson:"imageKey,omitempty" json:"imageKey,omitempty"`
}
