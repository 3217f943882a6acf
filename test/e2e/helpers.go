// Package e2e provides end-to-end testing utilities for the deduce CLI
package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestTree represents a temporary directory tree for E2E testing
type TestTree struct {
	Path       string
	homePath   string
	t          *testing.T
	binaryPath string
}

// NewTestTree creates a new temporary tree for testing. Config and cache
// live in a separate fake home so they never appear inside the scanned
// tree.
func NewTestTree(t *testing.T) *TestTree {
	t.Helper()

	treePath := t.TempDir()
	homePath := t.TempDir()
	binaryPath := ensureBinary(t)

	return &TestTree{
		Path:       treePath,
		homePath:   homePath,
		t:          t,
		binaryPath: binaryPath,
	}
}

// ensureBinary builds the deduce binary if it doesn't exist and returns its path
func ensureBinary(t *testing.T) string {
	t.Helper()

	projectRoot := getProjectRoot(t)
	binaryPath := filepath.Join(projectRoot, "deduce")

	if _, err := os.Stat(binaryPath); err == nil {
		return binaryPath
	}

	t.Logf("Building deduce binary...")
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("Failed to build deduce binary: %v\nOutput: %s", err, output)
	}

	return binaryPath
}

// getProjectRoot finds the project root directory
func getProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("Could not find project root (no go.mod found)")
		}
		dir = parent
	}
}

// Scan runs deduce scan over the tree
func (v *TestTree) Scan(t *testing.T, extraArgs ...string) (string, string, error) {
	t.Helper()

	args := []string{"scan", v.Path}
	args = append(args, extraArgs...)

	return v.RunCommand(t, args...)
}

// Delete runs deduce delete over the tree without the confirmation prompt
func (v *TestTree) Delete(t *testing.T, extraArgs ...string) (string, string, error) {
	t.Helper()

	args := []string{"delete", v.Path, "--force"}
	args = append(args, extraArgs...)

	return v.RunCommand(t, args...)
}

// Move runs deduce move from the tree into target without confirmation
func (v *TestTree) Move(t *testing.T, target string, extraArgs ...string) (string, string, error) {
	t.Helper()

	args := []string{"move", v.Path, target, "--force"}
	args = append(args, extraArgs...)

	return v.RunCommand(t, args...)
}

// RunCommand runs a deduce command. HOME points at the fake home so
// config and cache lookups never touch the real user directories.
func (v *TestTree) RunCommand(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := exec.Command(v.binaryPath, args...)
	cmd.Dir = v.Path
	cmd.Env = append(os.Environ(), "HOME="+v.homePath)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	// Log command execution for debugging
	if t.Failed() || testing.Verbose() {
		t.Logf("Command: deduce %s", strings.Join(args, " "))
		t.Logf("Working Dir: %s", v.Path)
		t.Logf("Exit Code: %v", err)
		if stdout != "" {
			t.Logf("Stdout:\n%s", stdout)
		}
		if stderr != "" {
			t.Logf("Stderr:\n%s", stderr)
		}
	}

	return stdout, stderr, err
}

// CreateFile creates a test file in the tree
func (v *TestTree) CreateFile(t *testing.T, relativePath, content string) string {
	t.Helper()

	fullPath := filepath.Join(v.Path, relativePath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create directories for %s: %v", relativePath, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file %s: %v", relativePath, err)
	}

	return fullPath
}

// FileExists reports whether a path relative to the tree exists
func (v *TestTree) FileExists(relativePath string) bool {
	_, err := os.Stat(filepath.Join(v.Path, relativePath))
	return err == nil
}

// AssertOutputContains checks if output contains expected string
func AssertOutputContains(t *testing.T, output, expected, context string) {
	t.Helper()

	if !strings.Contains(output, expected) {
		t.Errorf("%s: output does not contain expected string.\nExpected substring: %q\nActual output:\n%s",
			context, expected, output)
	}
}

// AssertOutputNotContains checks if output does not contain a string
func AssertOutputNotContains(t *testing.T, output, unexpected, context string) {
	t.Helper()

	if strings.Contains(output, unexpected) {
		t.Errorf("%s: output contains unexpected string.\nUnexpected substring: %q\nActual output:\n%s",
			context, unexpected, output)
	}
}
