package util

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ---------------------
// ----- Functions -----
// ---------------------

// SourcePath resolves a bare source name to its path under the playground
// directory, the fixed location `vslc2c compile`/`tokens` read from.
func SourcePath(name string) string {
	return filepath.Join("playground", name+".py")
}

// ReadSource reads the named source file. An empty name falls back to
// stdin, waiting briefly for input the way the teacher's own ReadSource
// did for a headless pipe invocation.
func ReadSource(name string) (string, error) {
	if name != "" {
		b, err := os.ReadFile(SourcePath(name))
		return string(b), err
	}

	c := make(chan string)
	cerr := make(chan error)
	go func() {
		defer close(c)
		defer close(cerr)
		reader := bufio.NewReader(os.Stdin)
		text, err := reader.ReadString(0)
		if err == nil {
			c <- text
		} else {
			cerr <- err
		}
	}()

	select {
	case <-time.After(500 * time.Millisecond):
		return "", errors.New("expected input from stdin, got none")
	case s := <-c:
		return s, nil
	case err := <-cerr:
		return "", err
	}
}

// WriteOutput writes data to <name><ext> under the playground directory,
// creating or truncating it as needed, and returns the path written.
func WriteOutput(name, ext, data string) (string, error) {
	path := filepath.Join("playground", name+ext)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return "", err
	}
	return path, nil
}
