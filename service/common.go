package service

import (
	"fmt"
	"os"
	"strings"

	"notebook/app/config"
)

// configPath is the YAML file the commands read; --config overrides it.
var configPath = config.DefaultConfigFile

// extractConfigFlag removes "--config <path>" from args and returns the path.
func extractConfigFlag(args []string) ([]string, string) {
	path := configPath
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "--config" && i+1 < len(args):
			path = args[i+1]
			i++
		case strings.HasPrefix(args[i], "--config="):
			path = strings.TrimPrefix(args[i], "--config=")
		default:
			out = append(out, args[i])
		}
	}
	return out, path
}

// confirm asks a yes/no question on stdin; anything but y/Y is a no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	var response string
	_, _ = fmt.Scanln(&response)
	return response == "y" || response == "Y"
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
