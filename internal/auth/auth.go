// Package auth resolves bearer tokens into caller identities, either through the
// identity service or by verifying a locally signed JWT.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

const RoleAdmin = "admin"

// Identity is the verified caller
type Identity struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the caller may use administrative routes
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Verifier resolves a bearer token. Implementations return apperr errors:
// CodeUnauthorized for rejected tokens, CodeUpstreamUnavailable when the
// verification backend cannot answer.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header value
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// userID accepts both numeric and string user ids
type userID string

func (u *userID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = userID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*u = userID(n.String())
	return nil
}

type identityPayload struct {
	UserID userID `json:"user_id"`
	Sub    string `json:"sub"`
	Role   string `json:"role"`
}

func (p identityPayload) identity() *Identity {
	id := string(p.UserID)
	if id == "" {
		id = p.Sub
	}
	role := p.Role
	if role == "" {
		role = "user"
	}
	return &Identity{UserID: id, Role: role}
}
