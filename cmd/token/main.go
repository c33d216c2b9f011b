package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"

	"github.com/cmlabs-hris/teams-worktime/internal/pkg/jwt"
)

func main() {
	log.SetFlags(0)
	app := &cli.App{
		Name:            "token",
		Usage:           "mint an API access token for an employee code",
		UsageText:       "token --em-code CODE [options]",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "em-code",
				Aliases:  []string{"e"},
				Usage:    "Teams employee `CODE`",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "secret",
				Aliases: []string{"s"},
				Usage:   "HS256 signing secret",
				EnvVars: []string{"JWT_SECRET_KEY"},
			},
			&cli.StringFlag{
				Name:    "expiration",
				Aliases: []string{"x"},
				Usage:   "token lifetime as a Go `DURATION`",
				EnvVars: []string{"JWT_ACCESS_EXPIRATION_TIME"},
				Value:   "720h",
			},
		},
		Action: func(c *cli.Context) error {
			return mintToken(c.App.Writer, c.String("em-code"), c.String("secret"), c.String("expiration"))
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func mintToken(w io.Writer, emCode, secret, expiration string) error {
	if secret == "" {
		return errors.New("a signing secret is required (--secret or JWT_SECRET_KEY)")
	}

	token, expiresAt, err := jwt.NewJWTService(secret, expiration).GenerateAccessToken(emCode)
	if err != nil {
		return fmt.Errorf("generate token: %w", err)
	}

	fmt.Fprintf(w, "token:      %s\n", token)
	fmt.Fprintf(w, "expires at: %s\n", time.Unix(expiresAt, 0).Format(time.RFC3339))
	return nil
}
