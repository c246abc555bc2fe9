package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StatusKind is the lifecycle state of an account.
type StatusKind int

const (
	StatusActive StatusKind = iota
	StatusInactive
	StatusError
)

// AccountStatus is Active, Inactive or Error with a message.
//
// On disk it is "active", "inactive" or {"error": "<message>"}.
type AccountStatus struct {
	Kind    StatusKind
	Message string
}

// Active is the status of an account with a working session.
func Active() AccountStatus {
	return AccountStatus{Kind: StatusActive}
}

func Inactive() AccountStatus {
	return AccountStatus{Kind: StatusInactive}
}

// Errored marks an account whose last authentication failed with msg.
func Errored(msg string) AccountStatus {
	return AccountStatus{Kind: StatusError, Message: msg}
}

func (s AccountStatus) String() string {
	switch s.Kind {
	case StatusActive:
		return "active"
	case StatusInactive:
		return "inactive"
	default:
		return "error: " + s.Message
	}
}

func (s AccountStatus) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case StatusActive:
		return []byte(`"active"`), nil
	case StatusInactive:
		return []byte(`"inactive"`), nil
	case StatusError:
		return json.Marshal(struct {
			Error string `json:"error"`
		}{s.Message})
	}
	return nil, fmt.Errorf("unknown status kind %d", s.Kind)
}

func (s *AccountStatus) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		switch name {
		case "active", "Active":
			*s = Active()
		case "inactive", "Inactive":
			*s = Inactive()
		default:
			return fmt.Errorf("unknown account status %q", name)
		}
		return nil
	}

	var obj map[string]string
	if err := json.Unmarshal(b, &obj); err != nil {
		return errors.New("account status must be a string or an error object")
	}
	msg, ok := obj["error"]
	if !ok {
		msg, ok = obj["Error"]
	}
	if !ok {
		return errors.New("account status object must have an error key")
	}
	*s = Errored(msg)
	return nil
}
