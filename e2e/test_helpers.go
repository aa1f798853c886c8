package e2e

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// envSerialPort names a port with a recorder attached. Live capture tests are
// skipped without it.
const envSerialPort = "MICDUMP_E2E_SERIAL_PORT"

var (
	captureTimeout = flag.Duration("capture-timeout", 0, "Timeout passed to live capture tests (0 waits for the end marker)")
	cliBinaryPath  string
)

// buildCLIBinaryForE2E builds a fresh CLI binary for this test run.
func buildCLIBinaryForE2E() (string, func(), error) {
	tempDir, err := os.MkdirTemp("", "micdump-e2e-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	binPath := filepath.Join(tempDir, "micdump")
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = ".."
	if out, err := cmd.CombinedOutput(); err != nil {
		_ = os.RemoveAll(tempDir)
		return "", nil, fmt.Errorf("failed to build CLI binary: %w\n%s", err, out)
	}

	cleanup := func() {
		_ = os.RemoveAll(tempDir)
	}
	return binPath, cleanup, nil
}

func requireSerialPort(t *testing.T) string {
	t.Helper()
	port := os.Getenv(envSerialPort)
	if port == "" {
		t.Skipf("live capture tests are disabled; set %s to run", envSerialPort)
	}
	return port
}
