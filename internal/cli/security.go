package cli

import (
	"context"
	"fmt"
	"os"

	"securenotes/internal/common"
)

func (a *App) audit(ctx context.Context) {
	warnings := a.res.Crypto.SecurityAudit()
	if len(warnings) == 0 {
		fmt.Println("No security warnings.")
		return
	}
	for _, w := range warnings {
		fmt.Println("-", w)
	}
}

func (a *App) info(ctx context.Context) {
	fmt.Println(a.res.Crypto.SecurityInfo())
	if size, err := a.manager.Notes.DataSize(a.res.User.ID); err == nil {
		fmt.Printf("Encrypted data on disk: %d bytes\n", size)
	}
}

// changePassword rotates the account password and re-encrypts the notes
// under a key derived from the new one.
func (a *App) changePassword(ctx context.Context) error {
	oldPassword, err := getPassword("Current password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := getPassword("New password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	confirm, err := getPassword("Confirm new password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if string(newPassword) != string(confirm) {
		fmt.Println("Passwords do not match.")
		return nil
	}

	fmt.Println("Re-deriving encryption key, this takes a few seconds...")
	if err := a.manager.ChangePassword(ctx, a.res, oldPassword, newPassword); err != nil {
		fmt.Println("Password change failed:", err.Error())
		return err
	}
	a.dirty = false
	fmt.Println("Password changed.")
	return nil
}

// deleteAccount destroys the signed-in account and all of its data after a
// typed confirmation and a password re-check.
func (a *App) deleteAccount(ctx context.Context) error {
	answer, err := getSimpleText(a.reader,
		fmt.Sprintf("This permanently deletes the account %q and ALL its notes. Type DELETE to continue", a.res.User.Username),
		os.Stdout)
	if err != nil {
		return err
	}
	if answer != "DELETE" {
		fmt.Println("Cancelled.")
		return nil
	}

	password, err := getPassword("Enter password to confirm", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.manager.DeleteAccount(ctx, a.res, password); err != nil {
		fmt.Println("Deletion failed:", err.Error())
		return err
	}

	a.res = nil
	a.dirty = false
	fmt.Println("Account deleted.")
	return nil
}
