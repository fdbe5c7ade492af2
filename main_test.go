package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func callMain() (int, string) {
	exitCode := 0
	oldExit := exit
	defer func() { exit = oldExit }()
	exit = func(code int) {
		exitCode = code
		panic("exit")
	}

	var buf bytes.Buffer
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	done := make(chan bool)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				if r != "exit" {
					panic(r)
				}
			}
			done <- true
		}()
		RealMain()
	}()

	outputDone := make(chan bool)
	go func() {
		_, _ = io.Copy(&buf, r)
		outputDone <- true
	}()

	<-done
	w.Close()
	os.Stdout = oldStdout
	<-outputDone

	return exitCode, buf.String()
}

func TestMain(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	dbPath := filepath.Join(t.TempDir(), "badger")
	t.Setenv("NOTEBOOK_DB_PATH", dbPath)

	tests := []struct {
		name           string
		args           []string
		expectedExit   int
		expectedOutput string
	}{
		{
			name:           "no arguments",
			args:           []string{"notebook"},
			expectedExit:   1,
			expectedOutput: "Usage: notebook <command>",
		},
		{
			name:           "help command",
			args:           []string{"notebook", "help"},
			expectedExit:   0,
			expectedOutput: "Usage: notebook <command>",
		},
		{
			name:           "version command",
			args:           []string{"notebook", "version"},
			expectedExit:   0,
			expectedOutput: "notebook version " + CliVersion,
		},
		{
			name:           "unknown command",
			args:           []string{"notebook", "unknown"},
			expectedExit:   1,
			expectedOutput: "Unknown command: unknown",
		},
		{
			name:           "init command",
			args:           []string{"notebook", "init"},
			expectedExit:   0,
			expectedOutput: "Database initialized successfully",
		},
		{
			name:           "backup without database",
			args:           []string{"notebook", "backup", "--config", filepath.Join(t.TempDir(), "none.yaml")},
			expectedExit:   1,
			expectedOutput: "No database exists to backup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.name == "backup without database" {
				t.Setenv("NOTEBOOK_DB_PATH", filepath.Join(t.TempDir(), "absent"))
			}
			os.Args = tt.args

			exitCode, output := callMain()

			assert.Contains(t, output, tt.expectedOutput)
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}
