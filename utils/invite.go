package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidInvite = errors.New("invalid invite token")

const inviteSubject = "team_invite"

type InviteClaims struct {
	TeamID uint `json:"team_id"`
	jwt.RegisteredClaims
}

// GenerateInviteToken signs an invitation to join teamID, valid for ttl.
func GenerateInviteToken(teamID uint, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &InviteClaims{
		TeamID: teamID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   inviteSubject,
			ID:        strconv.FormatUint(uint64(teamID), 10) + "-" + NewToken(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseInviteToken verifies the signature and expiry of an invite token.
func ParseInviteToken(tokenString, secret string) (*InviteClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &InviteClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidInvite, err)
	}

	claims, ok := token.Claims.(*InviteClaims)
	if !ok || !token.Valid || claims.Subject != inviteSubject || claims.TeamID == 0 {
		return nil, ErrInvalidInvite
	}
	return claims, nil
}
