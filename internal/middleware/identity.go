package middleware

// identity.go defines helper functions shared across middleware files. It
// provides a userID extraction function that pulls the subject (sub) or
// user_id claim from the JWT stored in the Echo context. When no token is
// present or no relevant claim exists, "guest" is returned.

import (
    "fmt"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

const guest = "guest"

// userID extracts a user identifier from the JWT stored in context.
func userID(c echo.Context) string {
    tok, ok := c.Get("user").(*jwt.Token)
    if !ok {
        return guest
    }
    cl, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return guest
    }
    for _, k := range []string{"sub", "user_id"} {
        switch v := cl[k].(type) {
        case string:
            if v != "" {
                return v
            }
        case float64:
            return fmt.Sprintf("%.0f", v)
        }
    }
    return guest
}

// UserID returns the authenticated subject stored by JWTAuth, or "guest".
func UserID(c echo.Context) string {
    if s, ok := c.Get("user_id").(string); ok && s != "" {
        return s
    }
    return guest
}
