package domain

import "time"

// Role classifies a user within the marketplace.
type Role string

// Marketplace roles.
const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleDelivery Role = "delivery"
)

// IsValid reports whether the role belongs to the closed role set.
func (r Role) IsValid() bool {
	return r == RoleCustomer || r == RoleVendor || r == RoleDelivery
}

// User is the identity record owned by the accounts module.
// Email is the login name and is unique. PasswordHash holds the bcrypt
// credential and is never serialized outward.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	DateJoined   time.Time `json:"date_joined"`
}

// FullName returns first and last name joined with a space.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsCustomer reports whether the user holds the customer role.
func (u *User) IsCustomer() bool { return u.Role == RoleCustomer }

// IsVendor reports whether the user holds the vendor role.
func (u *User) IsVendor() bool { return u.Role == RoleVendor }

// IsDelivery reports whether the user holds the delivery partner role.
func (u *User) IsDelivery() bool { return u.Role == RoleDelivery }
