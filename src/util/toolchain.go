package util

import (
	"fmt"
	"os"
	"os/exec"
)

// Compile invokes the external C toolchain to build cPath into a binary at
// binPath, tagging the intermediate object file with buildID so concurrent
// --run invocations sharing a working directory never collide on disk.
func Compile(cPath, binPath, buildID string) error {
	objPath := fmt.Sprintf("%s.%s.o", binPath, buildID)
	defer os.Remove(objPath)

	cmd := exec.Command("cc", "-std=c11", "-c", cPath, "-o", objPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cc: compile failed: %w", err)
	}

	cmd = exec.Command("cc", objPath, "-o", binPath)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cc: link failed: %w", err)
	}
	return nil
}

// Run executes binPath, piping stdio through to the current process, the
// way --run completes a compile-and-execute round trip.
func Run(binPath string, args ...string) error {
	cmd := exec.Command(binPath, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
