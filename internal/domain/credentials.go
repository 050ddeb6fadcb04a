package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleParent  Role = "parent"
	RoleStaff   Role = "staff"
)

// UserID accepts both numeric and string identifiers from the API.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		*id = UserID(raw)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return fmt.Errorf("decode user id: %w", err)
	}
	*id = UserID(number.String())
	return nil
}

type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

// Credentials is the persisted authentication state. Token and User are
// written and cleared together.
type Credentials struct {
	Token string
	User  *User
}

func (c Credentials) HasToken() bool {
	return c.Token != ""
}

func (c Credentials) Present() bool {
	return c.Token != "" && c.User != nil
}
