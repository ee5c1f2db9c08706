package utils // package utils provides helper functions for token creation and secret hashing

import (
	"errors" // errors for argument checks
	"time"   // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT along with its expiry.  The Token
// field contains the JWT string; Exp stores the expiration timestamp.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a participant.  The
// subject is the identity provider's user id and the role claim carries
// "candidate" or "interviewer".  The API's JWTAuth middleware accepts
// exactly these tokens.
func NewAccessToken(secret, userID, role string, ttl time.Duration) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, errors.New("jwt secret is empty")
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewServerToken signs the server-side token used to call the video
// provider's REST API.  The provider recognises server tokens by the
// `server: true` claim.
func NewServerToken(secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("provider secret is empty")
	}
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"server": true,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// NewSessionUserToken signs a client token that lets userID join realtime
// sessions with the provider's SDK.
func NewSessionUserToken(secret, userID string, ttl time.Duration) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, errors.New("provider secret is empty")
	}
	if userID == "" {
		return AccessToken{}, errors.New("user id is empty")
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
