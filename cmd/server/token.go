package main

import (
    "fmt"

    "github.com/pkg/errors"
    "github.com/urfave/cli"

    "github.com/iliyamo/cinema-catalog/internal/middleware"
    "github.com/iliyamo/cinema-catalog/internal/utils"
)

func makeTokenCMD() cli.Command {
    return cli.Command{
        Name:   "token",
        Usage:  "Mints an access token for the catalog API",
        Action: token,
        Flags: []cli.Flag{
            cli.StringFlag{Name: "secret", EnvVar: "JWT_SECRET", Usage: "HS256 signing secret"},
            cli.StringFlag{Name: "subject", Value: "admin", Usage: "token subject (sub)"},
            cli.StringFlag{Name: "role", Value: middleware.RoleAdmin, Usage: "ADMIN or CUSTOMER"},
            cli.IntFlag{Name: "ttl", EnvVar: "ACCESS_TOKEN_TTL_MIN", Value: 60, Usage: "lifetime in minutes"},
        },
    }
}

func token(c *cli.Context) error {
    role := c.String("role")
    if role != middleware.RoleAdmin && role != middleware.RoleCustomer {
        return errors.Errorf("unknown role %q", role)
    }
    at, err := utils.NewAccessToken(c.String("secret"), c.String("subject"), role, c.Int("ttl"))
    if err != nil {
        return err
    }
    _, err = fmt.Fprintln(c.App.Writer, at.Token)
    return err
}
