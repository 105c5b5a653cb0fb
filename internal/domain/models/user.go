// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold. Every role is eligible to donate.
const (
	RoleDonor     = "donor"
	RoleVolunteer = "volunteer"
	RoleAdmin     = "admin"
)

// Account statuses.
const (
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// User is an account holder. Blocked users keep their data but cannot
// create donation requests or donate.
//
// DistrictCI and UpazilaCI hold folded copies of the location fields so the
// donor search can do case-insensitive equality on an index.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Avatar       string             `bson:"avatar" json:"avatar"`
	BloodGroup   string             `bson:"blood_group" json:"bloodGroup"`
	District     string             `bson:"district" json:"district"`
	DistrictCI   string             `bson:"district_ci" json:"-"`
	Upazila      string             `bson:"upazila" json:"upazila"`
	UpazilaCI    string             `bson:"upazila_ci" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Status       string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsActive reports whether the account may act on donation requests.
func (u User) IsActive() bool { return u.Status == StatusActive }

// UserSummary is the expanded form of a user reference embedded in
// donation requests and fundings. It never carries credentials.
type UserSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Avatar   string             `bson:"avatar" json:"avatar"`
	District string             `bson:"district,omitempty" json:"district,omitempty"`
	Upazila  string             `bson:"upazila,omitempty" json:"upazila,omitempty"`
}

// IsValidRole reports whether r is a known role.
func IsValidRole(r string) bool {
	switch r {
	case RoleDonor, RoleVolunteer, RoleAdmin:
		return true
	}
	return false
}

// IsValidStatus reports whether s is a known account status.
func IsValidStatus(s string) bool {
	return s == StatusActive || s == StatusBlocked
}
