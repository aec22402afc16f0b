package model

import "time"

// User roles. Admin accounts are seeded, never produced by
// registration, and bypass the approval gate entirely.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Validation statuses for a user account.
const (
	ValidationPending  = "pending"
	ValidationApproved = "approved"
	ValidationRejected = "rejected"
)

// User types describe what the account intends to do on the
// marketplace. They carry no authorization weight; they are
// informative only.
const (
	UserTypeBuyer  = "buyer"
	UserTypeSeller = "seller"
	UserTypeBoth   = "both"
)

// User is an identity plus approval record stored in the users
// collection of the persistent store. Records are serialized as
// JSON, so the tags define the on-disk format.
//
// Fields:
//  ID               - unique identifier of the user.
//  Email            - unique email address (login name).
//  PasswordHash     - bcrypt hashed password.
//  FullName         - display name.
//  Phone            - contact phone.
//  IDNumber         - national id / document number.
//  UserType         - buyer, seller or both.
//  Role             - admin or user.
//  ValidationStatus - pending, approved or rejected.
//  IsApproved       - whether an admin approved the account.
//  ApprovedBy       - id of the admin who resolved the account (nullable).
//  ApprovedAt       - when the account was resolved (nullable).
//  CreatedAt        - timestamp of registration.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"passwordHash"`
	FullName         string     `json:"fullName"`
	Phone            string     `json:"phone"`
	IDNumber         string     `json:"idNumber"`
	UserType         string     `json:"userType"`
	Role             string     `json:"role"`
	ValidationStatus string     `json:"validationStatus"`
	IsApproved       bool       `json:"isApproved"`
	ApprovedBy       *string    `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}
