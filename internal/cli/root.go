package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	if a.isLoggedIn() {
		s := a.res.User.Username
		if a.dirty {
			s += " *"
		}
		return fmt.Sprintf("(%s)", s)
	}
	return ""
}

// Root runs the command loop until EOF or an explicit exit.
func (a *App) Root(ctx context.Context) {

	fmt.Println("Secure Notes (type 'help' for commands)")
	if count := a.manager.Accounts.Count(); count > 0 {
		fmt.Printf("%d account(s) registered on this machine.\n", count)
	}
	scanner := bufio.NewScanner(os.Stdin)

	for {
		a.maybeAutoSave(ctx)

		fmt.Printf("notes %s> ", a.getStatus())
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		if !a.isLoggedIn() {
			switch cmd {
			case "help":
				fmt.Println("Available commands: register, login, exit")
			case "register":
				a.Register(ctx)
			case "login":
				a.Login(ctx)
			case "exit", "quit":
				fmt.Println("Bye!")
				return
			default:
				fmt.Println("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "help":
			fmt.Println("Available commands: (l)ist, new, show, edit, delete, export, save, audit, info, passwd, deluser, logout, exit")
		case "l", "list":
			a.list(ctx)
		case "new":
			a.newNote(ctx)
		case "show":
			a.show(ctx)
		case "edit":
			a.edit(ctx)
		case "delete":
			a.delete(ctx)
		case "export":
			a.export(ctx)
		case "save":
			a.saveNow(ctx)
			fmt.Println("Saved.")
		case "audit":
			a.audit(ctx)
		case "info":
			a.info(ctx)
		case "passwd":
			a.changePassword(ctx)
		case "deluser":
			a.deleteAccount(ctx)
		case "logout":
			a.Logout(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}
