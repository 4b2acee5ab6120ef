package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    log "github.com/sirupsen/logrus"
)

// RequestLogger writes one logrus line per request.  Errors returned by the
// handler chain are passed to Echo's error handler first so the logged
// status is the one the client saw.
func RequestLogger() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                c.Error(err)
            }
            req := c.Request()
            res := c.Response()
            entry := log.WithFields(log.Fields{
                "method":     req.Method,
                "path":       req.URL.Path,
                "route":      c.Path(),
                "status":     res.Status,
                "bytes":      res.Size,
                "latency_ms": time.Since(start).Milliseconds(),
                "ip":         c.RealIP(),
                "request_id": res.Header().Get(echo.HeaderXRequestID),
            })
            switch {
            case res.Status >= 500:
                entry.Error("request")
            case res.Status >= 400:
                entry.Warn("request")
            default:
                entry.Info("request")
            }
            return nil
        }
    }
}
