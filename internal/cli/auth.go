package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"securenotes/internal/common"
	"securenotes/internal/session"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password (entered twice) and runs the
// register-then-login flow. The password bytes are wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Choose a username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Choose a password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(password) != string(confirm) {
		fmt.Println("Passwords do not match.")
		return nil
	}

	return a.authenticate(ctx, userName, password, true)
}

// Login prompts for credentials and authenticates. The password is wiped
// before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.authenticate(ctx, userName, password, false)
}

// authenticate kicks off the background sign-in flow and polls it with a
// progress line; key derivation takes a few seconds on purpose.
func (a *App) authenticate(ctx context.Context, userName string, password []byte, register bool) error {
	attempt, err := a.manager.Begin(ctx, userName, password, register)
	if err != nil {
		fmt.Println(err.Error())
		return err
	}

	var res *session.Result
	for {
		var done bool
		if res, done = attempt.Poll(); done {
			break
		}
		fmt.Printf("\rDeriving encryption key... %ds", int(attempt.Elapsed().Seconds()))
		time.Sleep(100 * time.Millisecond)
	}
	fmt.Print("\r")

	if res.Err != nil {
		fmt.Println("Login failed:", res.Err.Error())
		return res.Err
	}

	for _, w := range res.Warnings {
		fmt.Println("Warning:", w)
	}

	a.res = res
	a.dirty = false
	a.lastSave = time.Now()
	fmt.Printf("Welcome, %s! You have %d note(s).\n", res.User.Username, len(res.Notes))
	return nil
}

// Logout saves pending changes and drops the decrypted state.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return nil
	}
	a.saveNow(ctx)
	a.res = nil
	a.dirty = false
	fmt.Println("Logged out.")
	return nil
}
