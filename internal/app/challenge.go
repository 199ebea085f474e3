package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ErrInvalidChallenge covers malformed, forged, expired and foreign challenge tokens.
var ErrInvalidChallenge = errors.New("invalid deal challenge")

// ChallengeClaims carries a replayable deal.
type ChallengeClaims struct {
	Seed int64 `json:"seed"`
	jwt.StandardClaims
}

// ChallengeService signs and verifies deal challenges so a seed can be shared as a tamper-proof
// token.
type ChallengeService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewChallengeService(secret, issuer string, ttl time.Duration) *ChallengeService {
	return &ChallengeService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a challenge for seed.
func (s *ChallengeService) Issue(seed int64) (string, error) {
	if s == nil {
		return "", fmt.Errorf("challenge service is nil")
	}
	if len(s.secret) == 0 || s.issuer == "" {
		return "", fmt.Errorf("challenge config is incomplete")
	}
	now := s.now()
	claims := ChallengeClaims{
		Seed: seed,
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature, issuer and expiry of a challenge and returns its seed.
func (s *ChallengeService) Verify(tokenString string) (int64, error) {
	if s == nil || len(s.secret) == 0 {
		return 0, fmt.Errorf("%w: challenges are not configured", ErrInvalidChallenge)
	}
	var claims ChallengeClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidChallenge, err)
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return 0, fmt.Errorf("%w: issuer %q", ErrInvalidChallenge, claims.Issuer)
	}
	return claims.Seed, nil
}
