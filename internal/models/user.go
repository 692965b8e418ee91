package models

import "strconv"

// Role values a user document may carry.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents a single entry in the user directory.
//
// The bson tags match the collection's $jsonSchema validator. The validate tags
// mirror the same constraints so an in-memory repository can enforce the storage
// contract without a live MongoDB.
type User struct {
	Username   string `json:"username,omitempty" bson:"username,omitempty" validate:"omitempty,max=30"`
	FirstName  string `json:"firstName" bson:"firstName" validate:"required,min=1,max=20,alpha"`
	MiddleName string `json:"middleName,omitempty" bson:"middleName,omitempty" validate:"omitempty,max=20,alpha"`
	LastName   string `json:"lastName,omitempty" bson:"lastName,omitempty" validate:"omitempty,max=20,alpha"`
	Mobile     int64  `json:"mobile" bson:"mobile" validate:"required,min=1000000000,max=9999999999"`
	Email      string `json:"email" bson:"email" validate:"required,max=30"`
	// Password always holds a bcrypt hash once the record is stored, never the
	// plaintext secret. It is serialized in list responses for wire compatibility.
	Password string `json:"password,omitempty" bson:"password,omitempty"`
	Role     string `json:"role,omitempty" bson:"role,omitempty" validate:"omitempty,oneof=ADMIN USER"`
}

// DeriveUsername builds the username assigned at creation time: the first name
// concatenated with the decimal mobile number.
func DeriveUsername(firstName string, mobile int64) string {
	return firstName + strconv.FormatInt(mobile, 10)
}
