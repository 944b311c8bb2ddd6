package utils

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt"

	"meetsync/models"
)

// IdentityFromToken extracts the authenticated user from a bearer token
// without verifying its signature. The backend is the only party holding
// the signing secret; the client still needs the claims to know which
// per-user update channel and participant records are its own. Validity
// is established separately by the checkToken round trip.
func IdentityFromToken(tokenString string) (models.User, error) {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
		return models.User{}, err
	}

	user := models.User{}

	id, ok := numericClaim(claims, "id")
	if !ok {
		id, ok = numericClaim(claims, "sub")
	}
	if !ok {
		return models.User{}, errors.New("token carries no user id claim")
	}
	user.ID = id

	if name, ok := claims["username"].(string); ok {
		user.Username = name
	} else if sub, ok := claims["sub"].(string); ok {
		user.Username = sub
	}

	return user, nil
}

// numericClaim reads an integer claim that may arrive as a JSON number
// or as a numeric string.
func numericClaim(claims jwt.MapClaims, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
