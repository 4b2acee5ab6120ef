package handler

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-catalog/internal/response"
)

// Health is the liveness probe used by load balancers.
func Health(c echo.Context) error {
    return response.OK(c, echo.Map{"status": "ok"})
}
