package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"notebook/app/config"
	"notebook/app/repositories"
)

var osExit = os.Exit

// HandleCommand handles the notebook subcommands and returns an exit code.
func HandleCommand(args []string) int {
	args, path := extractConfigFlag(args)
	if len(args) < 1 {
		PrintHelp()
		osExit(1)
		return 1
	}

	cmd := args[0]
	if cmd == "serve" {
		return RunAppServer(path)
	}
	if cmd == "help" {
		PrintHelp()
		return 0
	}

	cfg, err := config.Read(path)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		osExit(1)
		return 1
	}

	switch cmd {
	case "clean":
		clean(cfg.Database)
		return 0
	case "init":
		initDb(cfg.Database)
		return 0
	case "backup":
		return backup(cfg.Database)
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			osExit(1)
			return 1
		}
		return restore(cfg.Database, args[1])
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		PrintHelp()
		osExit(1)
		return 1
	}
}

// PrintHelp prints help for the subcommands.
func PrintHelp() {
	helpText := `Usage: notebook <command> [--config <file>]

Commands:
  serve                           Run the notebook API
  clean                           Delete the notebook database
  init                            Initialize a new empty database
  backup                          Create a backup of the database
  restore <file>                  Restore the database from a backup
  help                            Display this help message
  version                         Show version information
`
	fmt.Println(helpText)
}

// clean removes the database.
func clean(db config.Database) {
	if !exists(db.Path) {
		fmt.Println("Database is already clean (does not exist)")
		return
	}

	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return
	}

	if err := os.RemoveAll(db.Path); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return
	}
	fmt.Println("Database cleaned successfully")
}

// initDb initializes a new empty database.
func initDb(db config.Database) {
	if exists(db.Path) {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return
	}

	if err := os.MkdirAll(db.Path, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return
	}

	store, err := repositories.Open(db.Path)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return
	}
	defer store.Close()

	fmt.Println("Database initialized successfully")
}

// backup writes a full backup of the database into the backup directory.
func backup(db config.Database) int {
	if !exists(db.Path) {
		fmt.Println("No database exists to backup")
		return 1
	}

	if err := os.MkdirAll(db.BackupDir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := repositories.Open(db.Path)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	backupFile := filepath.Join(db.BackupDir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	version, err := store.Backup(f)
	if err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s (version %d)\n", backupFile, version)
	return 0
}

// restore replaces the database with the contents of a backup.
func restore(db config.Database, backupFile string) int {
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if exists(db.Path) {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(db.Path); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	if err := os.MkdirAll(db.Path, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	store, err := repositories.Open(db.Path)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return store.Restore(f)
	}()
	if err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}
