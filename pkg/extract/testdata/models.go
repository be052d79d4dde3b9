// Package testdata contains Go types exercised by the extract package's
// tests: a named-int enum, a struct with scalar/slice/map/pointer fields,
// an embedded struct, and an interface with two implementations.
package testdata

// Status is a user's account status.
type Status int

const (
	StatusUnknown Status = iota
	StatusActive
	StatusInactive
)

// Priority is a uint8-backed enum.
type Priority uint8

const (
	PriorityLow    Priority = 0
	PriorityMedium Priority = 1
	PriorityHigh   Priority = 2
)

// User is a user in the system.
type User struct {
	ID       int64
	Name     string
	Email    string
	Status   Status
	Age      int32
	Tags     []string
	Metadata map[string]string
	Address  *Address

	internal string // unexported, excluded by default
}

// Address is a physical address.
type Address struct {
	Street  string
	City    string
	Country string
	ZipCode string
}

// Admin is a User with elevated permissions.
type Admin struct {
	User
	Permissions []string
}

// Person is implemented by any named-person type.
type Person interface {
	GetName() string
}

// GetName returns u's name.
func (u *User) GetName() string {
	return u.Name
}

// GetName returns a's name.
func (a *Admin) GetName() string {
	return a.Name
}

// privateType is an unexported type, excluded by default.
type privateType struct {
	Value int
}

// Serializable is an empty marker interface used for polymorphic grouping.
type Serializable interface{}

var _ Serializable = (*User)(nil)
var _ Serializable = (*Admin)(nil)
