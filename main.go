package main

import (
	"fmt"
	"os"
	"strings"

	"notebook/service"
)

// CliVersion is the version reported by the version command.
const CliVersion = "1.0.0"

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches the command line to the service commands.
func RealMain() {
	if len(os.Args) < 2 {
		service.PrintHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "version", "--version", "-v":
		fmt.Printf("notebook version %s\n", CliVersion)
	case "help", "--help", "-h":
		service.PrintHelp()
	case "serve", "init", "clean", "backup", "restore":
		args := append([]string{cmd}, os.Args[2:]...)
		if code := service.HandleCommand(args); code != 0 {
			exit(code)
		}
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		service.PrintHelp()
		exit(1)
	}
}
