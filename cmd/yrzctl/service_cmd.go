package main

import (
	"flag"
	"fmt"
	"os"
)

func runServiceAdd(args []string) int {
	fs := flag.NewFlagSet("service add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	username := fs.String("user", "", "username")
	password := fs.String("pass", "", "password")
	name := fs.String("name", "", "service name")
	icon := fs.String("icon", "", "path to the service icon (optional)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, user, code := authenticated(*username, *password)
	if code != 0 {
		return code
	}
	svc, err := v.CreateService(user.ID, *name, *icon)
	if err != nil {
		fmt.Fprintf(os.Stderr, "add service: %v\n", err)
		return 1
	}
	fmt.Printf("created service %s (%s)\n", svc.Name, svc.ID)
	return 0
}

func runServiceList(args []string) int {
	fs := flag.NewFlagSet("service list", flag.ContinueOnError)
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
	services := v.ListServices(user.ID)
	if len(services) == 0 {
		fmt.Println("no services")
		return 0
	}
	for _, svc := range services {
		fmt.Printf("%s\t%s\t%d accounts\n", svc.ID, svc.Name, countServiceAccounts(v, user.ID, svc.ID))
	}
	return 0
}

func runServiceRemove(args []string) int {
	fs := flag.NewFlagSet("service rm", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	username := fs.String("user", "", "username")
	password := fs.String("pass", "", "password")
	id := fs.String("id", "", "service id")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	v, user, code := authenticated(*username, *password)
	if code != 0 {
		return code
	}
	if err := v.DeleteService(user.ID, *id); err != nil {
		fmt.Fprintf(os.Stderr, "remove service: %v\n", err)
		return 1
	}
	fmt.Println("service removed")
	return 0
}
