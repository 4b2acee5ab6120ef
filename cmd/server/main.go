package main

import (
    "os"

    "github.com/joho/godotenv"
    "github.com/pkg/errors"
    log "github.com/sirupsen/logrus"
    "github.com/urfave/cli"
)

func main() {
    app := cli.NewApp()
    app.Name = "cinema-catalog"
    app.Usage = "Cinema catalog API"
    app.Flags = []cli.Flag{
        cli.StringFlag{
            Name:  "env-file",
            Usage: "dotenv file loaded before reading configuration",
            Value: ".env",
        },
    }
    app.Before = func(c *cli.Context) error {
        return loadEnvFile(c.GlobalString("env-file"))
    }
    configure(app)
    if err := app.Run(os.Args); err != nil {
        log.WithError(err).Fatal("failed to run app")
    }
}

func configure(app *cli.App) {
    app.Commands = []cli.Command{makeServeCMD(), makeTokenCMD()}
}

// loadEnvFile loads path into the environment without overriding variables
// that are already set.  A missing file is not an error.
func loadEnvFile(path string) error {
    if path == "" {
        return nil
    }
    if _, err := os.Stat(path); os.IsNotExist(err) {
        return nil
    }
    return errors.Wrapf(godotenv.Load(path), "load %s", path)
}
