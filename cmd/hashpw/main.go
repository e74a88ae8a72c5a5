// Command hashpw generates a bcrypt password hash and prints the JSON
// user record to store in the users folder, for bootstrapping the first
// user.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"
)

func run(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("usage: hashpw <email> <password>")
	}
	email, password := cmd.Args().Get(0), cmd.Args().Get(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), int(cmd.Int("cost")))
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	record, err := json.MarshalIndent(map[string]string{
		"id":       email,
		"fullName": "Your full name",
		"avatar":   "https://link.to.your.profile.image",
		"hash":     string(hash),
	}, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println("Password hashed!")
	fmt.Printf("Now create a file named content/users/%s.json with the following JSON content:\n", email)
	fmt.Println(string(record))
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "hashpw",
		Usage:     "Generate a bcrypt hash and user record for the users folder",
		ArgsUsage: "<email> <password>",
		Action:    run,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "cost",
				Usage: "bcrypt cost factor",
				Value: 10,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
