package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewAccessToken(t *testing.T) {
    at, err := NewAccessToken("s3cret", "alice", "admin", 5)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().Add(5*time.Minute), at.Exp, 5*time.Second)

    tok, err := jwt.Parse(at.Token, func(*jwt.Token) (interface{}, error) { return []byte("s3cret"), nil })
    require.NoError(t, err)
    claims := tok.Claims.(jwt.MapClaims)
    assert.Equal(t, "alice", claims["sub"])
    assert.Equal(t, "ADMIN", claims["role"])
}

func TestNewAccessTokenRejectsBadInput(t *testing.T) {
    _, err := NewAccessToken("", "alice", "ADMIN", 5)
    assert.Error(t, err)

    _, err = NewAccessToken("s3cret", "alice", "ADMIN", 0)
    assert.Error(t, err)
}
