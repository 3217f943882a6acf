// Package testutil provides common testing utilities for deduce
package testutil

import (
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TempDir creates a temporary directory for testing
func TempDir(t *testing.T, prefix string) string {
	t.Helper()
	dir, err := os.MkdirTemp("", prefix)
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	// Clean up on test completion
	t.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			t.Errorf("Failed to clean up temp dir %s: %v", dir, err)
		}
	})

	return dir
}

// CreateTestFile creates a test file with specified content
func CreateTestFile(t *testing.T, dir, filename, content string) string {
	t.Helper()
	filePath := filepath.Join(dir, filename)

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	err := os.WriteFile(filePath, []byte(content), 0644)
	if err != nil {
		t.Fatalf("Failed to create test file %s: %v", filePath, err)
	}

	return filePath
}

// CreateTestFileWithSize creates a test file with random content of specified size
func CreateTestFileWithSize(t *testing.T, dir, filename string, size int64) string {
	t.Helper()
	filePath := filepath.Join(dir, filename)

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		t.Fatalf("Failed to create directory for test file: %v", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		t.Fatalf("Failed to create test file %s: %v", filePath, err)
	}
	defer file.Close()

	// Write random data
	written, err := io.CopyN(file, rand.Reader, size)
	if err != nil {
		t.Fatalf("Failed to write test data to %s: %v", filePath, err)
	}

	if written != size {
		t.Fatalf("Expected to write %d bytes, but wrote %d", size, written)
	}

	return filePath
}

// CreateTestTree creates files under root from a map of relative path to
// content and returns the created paths sorted by map iteration order.
func CreateTestTree(t *testing.T, root string, files map[string]string) []string {
	t.Helper()

	paths := make([]string, 0, len(files))
	for rel, content := range files {
		paths = append(paths, CreateTestFile(t, root, rel, content))
	}
	return paths
}

// CreateDuplicateFiles creates files with identical content under dir and
// returns their paths
func CreateDuplicateFiles(t *testing.T, dir, content string, names ...string) []string {
	t.Helper()

	paths := make([]string, 0, len(names))
	for _, name := range names {
		paths = append(paths, CreateTestFile(t, dir, name, content))
	}
	return paths
}

// SetModTime sets the access and modification time of a file
func SetModTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Failed to set mtime on %s: %v", path, err)
	}
}

// AssertFileExists checks if a file exists and fails the test if it doesn't
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("Expected file %s to exist, but it doesn't", path)
	}
}

// AssertFileNotExists checks if a file doesn't exist and fails the test if it does
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Expected file %s to not exist, but it does", path)
	}
}

// AssertDirExists checks if a directory exists and fails the test if it doesn't
func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Fatalf("Expected directory %s to exist, but it doesn't", path)
	}
	if err != nil {
		t.Fatalf("Error checking directory %s: %v", path, err)
	}
	if !info.IsDir() {
		t.Fatalf("Expected %s to be a directory, but it's not", path)
	}
}

// AssertFileContains checks if a file contains specific content
func AssertFileContains(t *testing.T, path, expectedContent string) {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}

	if !strings.Contains(string(content), expectedContent) {
		t.Fatalf("File %s does not contain expected content '%s'", path, expectedContent)
	}
}

// AssertFileSize checks if a file has the expected size
func AssertFileSize(t *testing.T, path string, expectedSize int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file %s: %v", path, err)
	}

	if info.Size() != expectedSize {
		t.Fatalf("File %s has size %d, expected %d", path, info.Size(), expectedSize)
	}
}

// CaptureOutput captures stdout/stderr for testing CLI commands
func CaptureOutput(t *testing.T, fn func()) (stdout, stderr string) {
	t.Helper()

	// Create pipes for stdout and stderr
	oldStdout := os.Stdout
	oldStderr := os.Stderr

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create stdout pipe: %v", err)
	}

	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create stderr pipe: %v", err)
	}

	// Replace stdout and stderr
	os.Stdout = stdoutW
	os.Stderr = stderrW

	// Create channels to capture output
	stdoutCh := make(chan string)
	stderrCh := make(chan string)

	// Start goroutines to read from pipes
	go func() {
		defer close(stdoutCh)
		output, _ := io.ReadAll(stdoutR)
		stdoutCh <- string(output)
	}()

	go func() {
		defer close(stderrCh)
		output, _ := io.ReadAll(stderrR)
		stderrCh <- string(output)
	}()

	// Execute the function
	fn()

	// Close writers and restore original stdout/stderr
	stdoutW.Close()
	stderrW.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	// Get captured output
	stdout = <-stdoutCh
	stderr = <-stderrCh

	// Close readers
	stdoutR.Close()
	stderrR.Close()

	return stdout, stderr
}

// SkipIfShort skips the test if running in short mode
func SkipIfShort(t *testing.T, reason string) {
	t.Helper()
	if testing.Short() {
		t.Skipf("Skipping test in short mode: %s", reason)
	}
}

// GenerateTestData generates test data of specified size for benchmarking
func GenerateTestData(size int) []byte {
	data := make([]byte, size)
	rand.Read(data)
	return data
}

// CompareBytes compares two byte slices and reports differences
func CompareBytes(t *testing.T, expected, actual []byte, context string) {
	t.Helper()

	if len(expected) != len(actual) {
		t.Fatalf("%s: length mismatch - expected %d bytes, got %d bytes",
			context, len(expected), len(actual))
	}

	for i := 0; i < len(expected); i++ {
		if expected[i] != actual[i] {
			t.Fatalf("%s: byte mismatch at position %d - expected %02x, got %02x",
				context, i, expected[i], actual[i])
		}
	}
}
