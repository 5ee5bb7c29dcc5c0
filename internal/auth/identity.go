package auth

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Identity represents a verified external user for the current session.
// It contains facts only, no decisions, and is immutable once parsed.
type Identity struct {
	SubjectID   string            `json:"subject_id"`
	DisplayName string            `json:"display_name"`
	Claims      map[string]string `json:"claims"`
}

// ParseIdentity decodes a user-info payload from the external auth service.
// The payload is validated here, at the boundary: anything that does not
// satisfy the contract fails with ErrMalformedResponse instead of surfacing
// later as a zero-value field.
func ParseIdentity(data []byte) (*Identity, error) {
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if id.SubjectID == "" {
		return nil, fmt.Errorf("%w: missing subject_id", ErrMalformedResponse)
	}

	if id.Claims == nil {
		id.Claims = map[string]string{}
	}

	return &id, nil
}

// Role returns the numeric role claim, or ok=false when the identity does
// not carry one (or carries a non-numeric value).
func (id *Identity) Role() (int, bool) {
	raw, ok := id.Claims["role"]
	if !ok {
		return 0, false
	}
	role, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return role, true
}
