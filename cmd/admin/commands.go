package main

import (
	"context"
	"direct-chat/auth"
	"direct-chat/domain"
	"direct-chat/repositories"
	"direct-chat/services"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

// openDB opens the store read-write, or read-only bypassing the lock so that
// a running server does not prevent inspection.
func openDB(path string, readOnly bool) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if readOnly {
		opts = opts.WithReadOnly(true).WithBypassLockGuard(true)
	}
	return badger.Open(opts)
}

func addUser(config Config, name, email, about string) error {
	if name == "" || email == "" {
		return fmt.Errorf("-name and -email are required")
	}
	db, err := openDB(config.BadgerFilepath, false)
	if err != nil {
		return err
	}
	defer db.Close()
	users, err := repositories.NewUserRepository(db)
	if err != nil {
		return err
	}
	defer users.Close()

	user, err := users.CreateUser(name, email, about, time.Now())
	if err != nil {
		return err
	}
	color.Success.Printf("User %s created with id %d\n", user.Email, user.ID)
	return nil
}

func addContact(config Config, ownerEmail, contactEmail string) error {
	db, err := openDB(config.BadgerFilepath, false)
	if err != nil {
		return err
	}
	defer db.Close()
	users, err := repositories.NewUserRepository(db)
	if err != nil {
		return err
	}
	defer users.Close()

	owner, err := users.GetUserByEmail(ownerEmail)
	if err != nil {
		return fmt.Errorf("owner %s: %w", ownerEmail, err)
	}
	contacts := services.NewContactService(logs.GetLoggerFromLevel(slog.LevelWarn), users, repositories.NewContactRepository(db))
	if _, err = contacts.AddContact(context.Background(), domain.AddContactCommand{
		OwnerID:      owner.ID,
		ContactEmail: contactEmail,
	}); err != nil {
		return err
	}
	color.Success.Printf("%s added to the contacts of %s\n", contactEmail, ownerEmail)
	return nil
}

func mintToken(config Config, email string) error {
	if config.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required to mint a token")
	}
	db, err := openDB(config.BadgerFilepath, true)
	if err != nil {
		return err
	}
	defer db.Close()
	users, err := repositories.NewUserRepository(db)
	if err != nil {
		return err
	}

	user, err := users.GetUserByEmail(email)
	if err != nil {
		return fmt.Errorf("user %s: %w", email, err)
	}
	token, err := auth.NewTokenManager(config.JWTSecret, config.JWTIssuer, config.AuthTokenDuration).GenerateToken(user)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func listUsers(config Config, w io.Writer) error {
	db, err := openDB(config.BadgerFilepath, true)
	if err != nil {
		return err
	}
	defer db.Close()
	users, err := repositories.NewUserRepository(db)
	if err != nil {
		return err
	}

	all, err := users.ListUsers()
	if err != nil {
		return err
	}
	table := newTable(w, []string{"ID", "Name", "Email", "Status", "Last seen"})
	for _, user := range all {
		lastSeen := "-"
		if !user.LastSeen.IsZero() {
			lastSeen = user.LastSeen.Format(time.RFC3339)
		}
		table.Append([]string{
			strconv.FormatUint(uint64(user.ID), 10),
			user.Name,
			user.Email,
			statusColour(user.Status),
			lastSeen,
		})
	}
	table.Render()
	return nil
}

func inspect(config Config, prefix string, w io.Writer) error {
	db, err := openDB(config.BadgerFilepath, true)
	if err != nil {
		return err
	}
	defer db.Close()

	table := newTable(w, []string{"Key", "Size", "Version"})
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			table.Append([]string{
				string(item.Key()),
				strconv.FormatInt(item.ValueSize(), 10),
				strconv.FormatUint(item.Version(), 10),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	table.Render()
	return nil
}

func banWords(config Config, words []string) error {
	if len(words) == 0 {
		return fmt.Errorf("at least one word is required")
	}
	db, err := openDB(config.BadgerFilepath, false)
	if err != nil {
		return err
	}
	defer db.Close()

	blacklist := repositories.NewBlacklistRepository(db)
	for _, word := range words {
		if err = blacklist.BanWord(word); err != nil {
			return fmt.Errorf("word %q: %w", word, err)
		}
	}
	color.Success.Printf("%d word(s) banned, restart the server to apply\n", len(words))
	return nil
}

func listBannedWords(config Config, w io.Writer) error {
	db, err := openDB(config.BadgerFilepath, true)
	if err != nil {
		return err
	}
	defer db.Close()

	words, err := repositories.NewBlacklistRepository(db).Words()
	if err != nil {
		return err
	}
	table := newTable(w, []string{"Word"})
	for _, word := range words {
		table.Append([]string{word})
	}
	table.Render()
	return nil
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func statusColour(status domain.UserStatus) string {
	switch status {
	case domain.StatusOnline:
		return color.Green.Sprint(status)
	case domain.StatusAway:
		return color.Yellow.Sprint(status)
	default:
		return color.Gray.Sprint(status)
	}
}
