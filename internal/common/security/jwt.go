package security

import (
	"ctf_arena/internal/platform/config"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateToken issues a token carrying the authenticated identity the
// core trusts: user id, username, team and role.
func GenerateToken(userID, username, team, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"team":     team,
		"role":     role,
		"exp":      time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":      time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func stringClaim(claims jwt.MapClaims, key string) (string, error) {
	v, ok := claims[key].(string)
	if !ok {
		return "", errors.New(key + " claim is missing or not a string")
	}
	return v, nil
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "user_id")
}

func GetUsernameFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "username")
}

func GetTeamFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "team")
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	return stringClaim(claims, "role")
}
