package utils // package utils provides token helpers shared by the server and the CLI

import (
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/pkg/errors"
)

// AccessToken is a signed JWT and its expiry.
type AccessToken struct {
    Token string
    Exp   time.Time
}

// NewAccessToken signs an HS256 JWT carrying sub, role, exp and iat.  The
// catalog only verifies tokens; the `token` command uses this to mint them
// for operators and tests.
func NewAccessToken(secret, subject, role string, ttlMin int) (AccessToken, error) {
    if secret == "" {
        return AccessToken{}, errors.New("empty signing secret")
    }
    if ttlMin < 1 {
        return AccessToken{}, errors.Errorf("ttl must be positive, got %d minutes", ttlMin)
    }
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  subject,
        "role": strings.ToUpper(role),
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, errors.Wrap(err, "sign token")
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}
