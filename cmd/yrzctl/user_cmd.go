package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/yuuruii/yrzvault/internal/vault"
)

func runRegister(args []string) int {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	username := fs.String("user", "", "username to register")
	password := fs.String("pass", "", "password for the new user")
	email := fs.String("email", "", "contact email (optional)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "open vault: %v\n", err)
		return 1
	}
	user, err := v.Register(*username, *password, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "register: %v\n", err)
		return 1
	}
	fmt.Printf("registered %s (uid %s)\n", user.Username, user.ID)
	return 0
}

func runLogin(args []string) int {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	username := fs.String("user", "", "username")
	password := fs.String("pass", "", "password")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "open vault: %v\n", err)
		return 1
	}
	user, err := v.Authenticate(*username, *password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		return 1
	}
	fmt.Printf("uid %s\n", user.ID)
	return 0
}

func runPasswd(args []string) int {
	fs := flag.NewFlagSet("passwd", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	username := fs.String("user", "", "username")
	oldPassword := fs.String("old", "", "current password")
	newPassword := fs.String("new", "", "replacement password")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "open vault: %v\n", err)
		return 1
	}
	if err := v.UpdatePassword(*username, *oldPassword, *newPassword); err != nil {
		fmt.Fprintf(os.Stderr, "passwd: %v\n", err)
		return 1
	}
	fmt.Println("password updated")
	return 0
}

func runUsers(args []string) int {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "open vault: %v\n", err)
		return 1
	}
	if !v.HasUsers() {
		fmt.Println("no users registered")
		return 0
	}
	for _, name := range v.Usernames() {
		fmt.Println(name)
	}
	return 0
}

func runProfileEmail(args []string) int {
	fs := flag.NewFlagSet("profile email", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	username := fs.String("user", "", "username")
	password := fs.String("pass", "", "password")
	email := fs.String("email", "", "new contact email")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, user, code := authenticated(*username, *password)
	if code != 0 {
		return code
	}
	if err := v.UpdateEmail(user.Username, *email); err != nil {
		fmt.Fprintf(os.Stderr, "update email: %v\n", err)
		return 1
	}
	fmt.Println("email updated")
	return 0
}

func runProfileAvatar(args []string) int {
	fs := flag.NewFlagSet("profile avatar", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	username := fs.String("user", "", "username")
	password := fs.String("pass", "", "password")
	path := fs.String("path", "", "path to the avatar image")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, user, code := authenticated(*username, *password)
	if code != 0 {
		return code
	}
	if err := v.SetAvatar(user.Username, *path); err != nil {
		fmt.Fprintf(os.Stderr, "set avatar: %v\n", err)
		return 1
	}
	fmt.Println("avatar updated")
	return 0
}

// authenticated opens the vault and verifies the caller before any command
// that touches user-owned data.
func authenticated(username, password string) (*vault.Vault, vault.User, int) {
	v, err := openVault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "open vault: %v\n", err)
		return nil, vault.User{}, 1
	}
	user, err := v.Authenticate(username, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "login: %v\n", err)
		return nil, vault.User{}, 1
	}
	return v, user, 0
}
