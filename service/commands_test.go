package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"notebook/app/config"
	"notebook/app/models"
	"notebook/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(f func()) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	f()

	_ = w.Close()
	os.Stdout = oldStdout
	return <-done
}

func mockStdin(input string, f func()) {
	oldStdin := os.Stdin
	r, w, _ := os.Pipe()
	os.Stdin = r

	go func() {
		_, _ = w.Write([]byte(input))
		_ = w.Close()
	}()

	f()

	os.Stdin = oldStdin
}

func setupTestDB(t *testing.T) config.Database {
	t.Helper()
	tmpDir := t.TempDir()
	return config.Database{
		Path:      filepath.Join(tmpDir, "badger"),
		BackupDir: filepath.Join(tmpDir, "backups"),
	}
}

func TestHandleCommand(t *testing.T) {
	db := setupTestDB(t)
	t.Setenv("NOTEBOOK_DB_PATH", db.Path)
	t.Setenv("NOTEBOOK_BACKUP_DIR", db.BackupDir)

	tests := []struct {
		name           string
		args           []string
		expectedOutput string
		expectedExit   int
	}{
		{
			name:           "no arguments",
			args:           []string{},
			expectedOutput: "Usage: notebook <command>",
			expectedExit:   1,
		},
		{
			name:           "help command",
			args:           []string{"help"},
			expectedOutput: "Usage: notebook <command>",
			expectedExit:   0,
		},
		{
			name:           "unknown command",
			args:           []string{"unknown"},
			expectedOutput: "Unknown command: unknown",
			expectedExit:   1,
		},
		{
			name:           "restore without file",
			args:           []string{"restore"},
			expectedOutput: "Error: backup file path required for restore",
			expectedExit:   1,
		},
		{
			name:           "init with config flag",
			args:           []string{"init", "--config", filepath.Join(t.TempDir(), "missing.yaml")},
			expectedOutput: "Database initialized successfully",
			expectedExit:   0,
		},
		{
			name:           "serve without secret",
			args:           []string{"serve", "--config=" + filepath.Join(t.TempDir(), "missing.yaml")},
			expectedOutput: "Failed to load configuration",
			expectedExit:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "serve without secret" {
				t.Setenv("NOTEBOOK_JWT_SECRET", "")
			}

			exitCode := -1
			oldOsExit := osExit
			defer func() { osExit = oldOsExit }()
			osExit = func(code int) {
				exitCode = code
				panic("exit")
			}

			output := captureOutput(func() {
				defer func() {
					if r := recover(); r != nil {
						if r != "exit" {
							panic(r)
						}
					}
				}()
				exitCode = HandleCommand(tt.args)
			})

			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}

func TestExtractConfigFlag(t *testing.T) {
	args, path := extractConfigFlag([]string{"restore", "--config", "x.yaml", "file.db"})
	assert.Equal(t, []string{"restore", "file.db"}, args)
	assert.Equal(t, "x.yaml", path)

	args, path = extractConfigFlag([]string{"serve"})
	assert.Equal(t, []string{"serve"}, args)
	assert.Equal(t, config.DefaultConfigFile, path)
}

func TestInitDb(t *testing.T) {
	db := setupTestDB(t)

	t.Run("initialize new database", func(t *testing.T) {
		output := captureOutput(func() { initDb(db) })

		assert.Contains(t, output, "Database initialized successfully")
		assert.DirExists(t, db.Path)
	})

	t.Run("initialize existing database", func(t *testing.T) {
		output := captureOutput(func() { initDb(db) })

		assert.Contains(t, output, "Database already exists")
	})
}

func TestClean(t *testing.T) {
	db := setupTestDB(t)

	t.Run("clean non-existent database", func(t *testing.T) {
		output := captureOutput(func() { clean(db) })

		assert.Contains(t, output, "Database is already clean")
	})

	t.Run("clean existing database - cancelled", func(t *testing.T) {
		captureOutput(func() { initDb(db) })
		require.DirExists(t, db.Path)

		var output string
		mockStdin("n\n", func() {
			output = captureOutput(func() { clean(db) })
		})

		assert.Contains(t, output, "Operation cancelled")
		assert.DirExists(t, db.Path)
	})

	t.Run("clean existing database - confirmed", func(t *testing.T) {
		var output string
		mockStdin("y\n", func() {
			output = captureOutput(func() { clean(db) })
		})

		assert.Contains(t, output, "Database cleaned successfully")
		assert.NoDirExists(t, db.Path)
	})
}

func TestBackupAndRestore(t *testing.T) {
	db := setupTestDB(t)

	t.Run("backup non-existent database", func(t *testing.T) {
		var code int
		output := captureOutput(func() { code = backup(db) })

		assert.Equal(t, 1, code)
		assert.Contains(t, output, "No database exists to backup")
	})

	// Seed one post so the round trip has something to carry.
	store, err := repositories.Open(db.Path)
	require.NoError(t, err)
	post := &models.Post{Title: "kept", Content: "survives restore", Owner: "owner-1"}
	require.NoError(t, store.Posts().Create(context.Background(), post))
	require.NoError(t, store.Close())

	var backupFile string
	t.Run("backup existing database", func(t *testing.T) {
		var code int
		output := captureOutput(func() { code = backup(db) })

		assert.Equal(t, 0, code)
		assert.Contains(t, output, "Database backed up successfully")

		files, err := filepath.Glob(filepath.Join(db.BackupDir, "backup_*.db"))
		require.NoError(t, err)
		require.Len(t, files, 1)
		backupFile = files[0]
	})

	t.Run("restore non-existent backup", func(t *testing.T) {
		output := captureOutput(func() { restore(db, "nonexistent.db") })

		assert.Contains(t, output, "Backup file does not exist")
	})

	t.Run("restore with existing database - cancelled", func(t *testing.T) {
		var output string
		mockStdin("n\n", func() {
			output = captureOutput(func() { restore(db, backupFile) })
		})

		assert.Contains(t, output, "Operation cancelled")
	})

	t.Run("restore with existing database - confirmed", func(t *testing.T) {
		var code int
		var output string
		mockStdin("y\n", func() {
			output = captureOutput(func() { code = restore(db, backupFile) })
		})

		assert.Equal(t, 0, code, output)
		assert.Contains(t, output, "Database restored successfully")

		store, err := repositories.Open(db.Path)
		require.NoError(t, err)
		defer store.Close()

		got, err := store.Posts().GetByID(context.Background(), "owner-1", post.ID)
		require.NoError(t, err)
		assert.Equal(t, "survives restore", got.Content)
	})

	t.Run("restore empty backup", func(t *testing.T) {
		empty := filepath.Join(t.TempDir(), "empty.db")
		require.NoError(t, os.WriteFile(empty, nil, 0644))

		var code int
		output := captureOutput(func() { code = restore(db, empty) })

		assert.Equal(t, 1, code)
		assert.Contains(t, output, "Backup file is empty")
	})
}
