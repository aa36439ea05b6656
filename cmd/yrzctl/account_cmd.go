package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/yuuruii/yrzvault/internal/vault"
)

func runAccountAdd(args []string) int {
	fs := flag.NewFlagSet("account add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	username := fs.String("user", "", "username")
	password := fs.String("pass", "", "password")
	serviceID := fs.String("service", "", "service id the account belongs to")
	accName := fs.String("name", "", "display name for the account")
	accUser := fs.String("username", "", "login name at the service")
	accPass := fs.String("password", "", "password at the service")
	accEmail := fs.String("email", "", "email at the service")
	serviceLogin := fs.Bool("service-login", false, "account signs in through the service, no password stored")
	icon := fs.String("icon", "", "path to an icon image")
	images := fs.String("images", "", "comma-separated paths to attached images")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, user, code := authenticated(*username, *password)
	if code != 0 {
		return code
	}
	acc, err := v.CreateAccount(vault.CreateAccountParams{
		UID:          user.ID,
		ServiceID:    *serviceID,
		Name:         *accName,
		Username:     *accUser,
		Password:     *accPass,
		Email:        *accEmail,
		ServiceLogin: *serviceLogin,
		Icon:         *icon,
		Images:       splitList(*images),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "add account: %v\n", err)
		return 1
	}
	fmt.Printf("created account %s (%s)\n", acc.DisplayName, acc.ID)
	return 0
}

func runAccountList(args []string) int {
	fs := flag.NewFlagSet("account list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	username := fs.String("user", "", "username")
	password := fs.String("pass", "", "password")
	serviceID := fs.String("service", "", "limit to one service (optional)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, user, code := authenticated(*username, *password)
	if code != 0 {
		return code
	}
	accounts, err := v.ListAccounts(user.ID, *serviceID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list accounts: %v\n", err)
		return 1
	}
	if len(accounts) == 0 {
		fmt.Println("no accounts")
		return 0
	}
	for _, acc := range accounts {
		login := acc.Username
		if login == "" {
			login = acc.Email
		}
		fmt.Printf("%s\t%s\t%s\n", acc.ID, acc.DisplayName, login)
	}
	return 0
}

func runAccountShow(args []string) int {
	fs := flag.NewFlagSet("account show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	username := fs.String("user", "", "username")
	password := fs.String("pass", "", "password")
	id := fs.String("id", "", "account id")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, user, code := authenticated(*username, *password)
	if code != 0 {
		return code
	}
	acc, err := v.GetAccount(user.ID, *id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "show account: %v\n", err)
		return 1
	}
	fmt.Printf("id:       %s\n", acc.ID)
	fmt.Printf("service:  %s\n", acc.ServiceID)
	fmt.Printf("name:     %s\n", acc.Name)
	fmt.Printf("username: %s\n", acc.Username)
	fmt.Printf("email:    %s\n", acc.Email)
	if acc.ServiceLogin {
		fmt.Println("password: (signs in through the service)")
	} else {
		fmt.Printf("password: %s\n", acc.Password)
	}
	if acc.Icon != "" {
		fmt.Printf("icon:     %s\n", acc.Icon)
	}
	for _, img := range acc.Images {
		fmt.Printf("image:    %s\n", img)
	}
	return 0
}

func runAccountRemove(args []string) int {
	fs := flag.NewFlagSet("account rm", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	username := fs.String("user", "", "username")
	password := fs.String("pass", "", "password")
	id := fs.String("id", "", "account id")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, user, code := authenticated(*username, *password)
	if code != 0 {
		return code
	}
	if err := v.DeleteAccount(user.ID, *id); err != nil {
		fmt.Fprintf(os.Stderr, "remove account: %v\n", err)
		return 1
	}
	fmt.Println("account removed")
	return 0
}

func runAccountCount(args []string) int {
	fs := flag.NewFlagSet("account count", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	username := fs.String("user", "", "username")
	password := fs.String("pass", "", "password")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, user, code := authenticated(*username, *password)
	if code != 0 {
		return code
	}
	fmt.Println(v.CountAccounts(user.ID))
	return 0
}

func countServiceAccounts(v *vault.Vault, uid, serviceID string) int {
	accounts, err := v.ListAccounts(uid, serviceID)
	if err != nil {
		return 0
	}
	return len(accounts)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
