package authsvc

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/homecase-console/internal/domain"
)

// RoleClaim is the payload field holding the role.
const RoleClaim = "role"

//nolint:gochecknoglobals
var tokenParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeRole reads the role claim from a bearer token without verifying it.
//
// The token must have three dot-separated segments and a payload that is
// base64url-encoded JSON; otherwise domain.ErrInvalidAuthToken is returned.
// The header and signature segments are not inspected.
// A payload without a string role claim, or with an unknown role, yields
// RoleNone and domain.ErrNoRoleClaim, which callers may treat as non-fatal.
//
// The signature is never checked here. The decoded role drives what the
// console shows; the server authorizes every operation itself.
func DecodeRole(token string) (domain.Role, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return domain.RoleNone, errors.Join(domain.ErrInvalidAuthToken,
			fmt.Errorf("%w: %d segments", jwt.ErrTokenMalformed, len(parts)))
	}

	payload, err := tokenParser.DecodeSegment(parts[1])
	if err != nil {
		return domain.RoleNone, errors.Join(domain.ErrInvalidAuthToken, fmt.Errorf("decode payload: %w", err))
	}

	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return domain.RoleNone, errors.Join(domain.ErrInvalidAuthToken, fmt.Errorf("unmarshal payload: %w", err))
	}

	raw, ok := claims[RoleClaim].(string)
	if !ok || raw == "" {
		return domain.RoleNone, domain.ErrNoRoleClaim
	}

	role, ok := domain.ParseRole(raw)
	if !ok {
		return domain.RoleNone, fmt.Errorf("%w: unknown role %q", domain.ErrNoRoleClaim, raw)
	}

	return role, nil
}
