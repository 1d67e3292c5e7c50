package models

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a profile keyed by email. Fields the API does not know about are
// kept in Extra and stored inline.
type User struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty" json:"_id,omitempty"`
	Email       string                 `bson:"email" json:"email" binding:"required,email"`
	DisplayName string                 `bson:"displayName,omitempty" json:"displayName,omitempty"`
	Role        Role                   `bson:"role,omitempty" json:"role,omitempty"`
	Extra       map[string]interface{} `bson:",inline" json:"-"`
}

var userKeys = []string{"_id", "email", "displayName", "role"}

type userAlias User

// EffectiveRole reports the stored role, treating an absent role as None.
func (u User) EffectiveRole() Role {
	if u.Role == "" {
		return RoleNone
	}
	return u.Role
}

func (u User) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(userAlias(u), u.Extra)
}

func (u *User) UnmarshalJSON(data []byte) error {
	var alias userAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := extraFields(data, userKeys)
	if err != nil {
		return err
	}
	*u = User(alias)
	u.Extra = extra
	return nil
}
