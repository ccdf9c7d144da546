package notification

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Action is the human response a notification button carries
type Action string

const (
	ActionApprove Action = "approve"
	ActionCancel  Action = "cancel"
)

var ErrInvalidActionToken = errors.New("invalid action token")

type actionClaims struct {
	DraftID string `json:"draft_id"`
	Action  string `json:"action"`
	jwt.RegisteredClaims
}

// ActionTokenIssuer signs and verifies the short-lived tokens embedded in a
// notification's approve/cancel actions. Each token binds the draft identity
// to the intended action, so a callback cannot be replayed for a different
// draft or flipped to the other action.
type ActionTokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewActionTokenIssuer creates an issuer with the given HMAC secret and TTL
func NewActionTokenIssuer(secret string, ttl time.Duration) *ActionTokenIssuer {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &ActionTokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Sign issues a token for one (draft, action) pair
func (i *ActionTokenIssuer) Sign(draftID string, action Action) (string, error) {
	now := time.Now()
	claims := actionClaims{
		DraftID: draftID,
		Action:  string(action),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify parses a token and returns the draft identity and action it binds
func (i *ActionTokenIssuer) Verify(token string) (draftID string, action Action, err error) {
	var claims actionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", ErrInvalidActionToken
	}

	action = Action(claims.Action)
	if action != ActionApprove && action != ActionCancel {
		return "", "", ErrInvalidActionToken
	}
	if claims.DraftID == "" {
		return "", "", ErrInvalidActionToken
	}
	return claims.DraftID, action, nil
}
