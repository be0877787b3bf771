// Command admin manages the store of a stopped server: it creates users and
// contacts, bans words, mints tokens for local testing and prints what is stored.
// Read-only commands also work while the server is running.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
)

const usage = `usage: admin <command> [flags]

commands:
  add-user     -name NAME -email EMAIL [-about TEXT]
  add-contact  -owner EMAIL -contact EMAIL
  token        -email EMAIL
  users
  ban-word     WORD...
  banned
  inspect      [-prefix PREFIX]
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		color.Error.Println(err)
		os.Exit(1)
	}
}

func run(args []string) error {
	_ = godotenv.Load()
	config, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if !config.Colours {
		color.Disable()
	}
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	command, flags := args[0], flag.NewFlagSet(args[0], flag.ContinueOnError)
	switch command {
	case "add-user":
		name := flags.String("name", "", "display name")
		email := flags.String("email", "", "unique email")
		about := flags.String("about", "", "short description")
		if err = flags.Parse(args[1:]); err != nil {
			return err
		}
		return addUser(config, *name, *email, *about)
	case "add-contact":
		owner := flags.String("owner", "", "email of the contact list owner")
		contact := flags.String("contact", "", "email of the contact to add")
		if err = flags.Parse(args[1:]); err != nil {
			return err
		}
		return addContact(config, *owner, *contact)
	case "token":
		email := flags.String("email", "", "email of the user")
		if err = flags.Parse(args[1:]); err != nil {
			return err
		}
		return mintToken(config, *email)
	case "users":
		return listUsers(config, os.Stdout)
	case "ban-word":
		return banWords(config, args[1:])
	case "banned":
		return listBannedWords(config, os.Stdout)
	case "inspect":
		prefix := flags.String("prefix", "", "key prefix to scan")
		if err = flags.Parse(args[1:]); err != nil {
			return err
		}
		return inspect(config, *prefix, os.Stdout)
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
