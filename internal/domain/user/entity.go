// Package user defines the authenticated user record handed to the client at login
package user

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidUserID is returned for a user record without a usable identifier
var ErrInvalidUserID = errors.New("user id must be a positive integer")

// ID identifies a user on the personalization service
type ID int64

// String returns the decimal form of the identifier. It doubles as the
// session token persisted under userToken.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses the decimal form of an identifier
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidUserID
	}
	return ID(n), nil
}

// Info is the user record returned by the login flow and persisted verbatim
// under userInfo.
type Info struct {
	IDUser    ID     `json:"id_user" validate:"required,gt=0"`
	Username  string `json:"username,omitempty" validate:"omitempty,max=64"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// DisplayName returns the best human-readable name available
func (i Info) DisplayName() string {
	full := strings.TrimSpace(i.FirstName + " " + i.LastName)
	switch {
	case full != "":
		return full
	case i.Username != "":
		return i.Username
	case i.Email != "":
		return i.Email
	default:
		return "user " + i.IDUser.String()
	}
}

// Token returns the session token derived from the record
func (i Info) Token() string {
	return i.IDUser.String()
}
