package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// Helper types for unmarshaling JSON responses
type keyPairExport struct {
	Params      string `json:"params"`
	PublicKey   string `json:"public_key"`
	SecretKey   string `json:"secret_key"`
	Fingerprint string `json:"fingerprint"`
	CreatedAt   string `json:"created_at"`
	KeyHMAC     string `json:"key_hmac"`
}

type signatureExport struct {
	Params    string `json:"params"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

const testSeed = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f" +
	"202122232425262728292a2b2c2d2e2f303132333435363738393a3b3c3d3e3f"

// runCLI executes the rainbow-cli via `go run ./cmd/rainbow-cli` from the repository root.
func runCLI(t *testing.T, timeout time.Duration, args ...string) (stdout string, stderr string, err error) {
	return runCLIWithStdin(t, timeout, "", args...)
}

// runCLIWithStdin runs CLI with stdin input
func runCLIWithStdin(t *testing.T, timeout time.Duration, stdin string, args ...string) (stdout string, stderr string, err error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	cmdArgs := append([]string{"run", "./cmd/rainbow-cli"}, args...)
	cmd := exec.CommandContext(ctx, "go", cmdArgs...)
	// ensure we run from repo root (cmd/rainbow-cli tests are executed from that directory)
	cmd.Dir = filepath.Join("..", "..")
	cmd.Stdin = strings.NewReader(stdin)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.String(), errBuf.String(), err
}

func keygen(t *testing.T, dir string, args ...string) string {
	t.Helper()
	kpFile := filepath.Join(dir, "kp.json")
	args = append([]string{"keygen", "--output", kpFile}, args...)
	if _, stderr, err := runCLI(t, 60*time.Second, args...); err != nil {
		t.Fatalf("keygen failed: %v, stderr: %s", err, stderr)
	}
	return kpFile
}

func TestHelpAndVersion(t *testing.T) {
	stdout, _, err := runCLI(t, 30*time.Second, "help")
	if err != nil {
		t.Fatalf("help command failed: %v, out: %s", err, stdout)
	}
	if !strings.Contains(stdout, "rainbow-cli - Rainbow") {
		t.Fatalf("help output does not contain expected header, got: %s", stdout)
	}

	stdout, _, err = runCLI(t, 30*time.Second, "version")
	if err != nil {
		t.Fatalf("version command failed: %v, out: %s", err, stdout)
	}
	if !strings.Contains(stdout, "version") {
		t.Fatalf("version output unexpected: %s", stdout)
	}
}

func TestKeygenSignVerify(t *testing.T) {
	dir := t.TempDir()
	kpFile := keygen(t, dir, "--level", "3", "--variant", "compressed")
	sigFile := filepath.Join(dir, "sig.json")
	message := "A signed message"

	// Sign
	_, stderr, err := runCLI(t, 60*time.Second, "sign", "--secret-key", kpFile, "--message", message, "--output", sigFile)
	if err != nil {
		t.Fatalf("sign failed: %v, stderr: %s", err, stderr)
	}

	// Verify
	stdout, stderr, err := runCLI(t, 60*time.Second, "verify", "--public-key", kpFile, "--message", message, "--signature", sigFile)
	if err != nil {
		t.Fatalf("verify failed: %v, stderr: %s, stdout: %s", err, stderr, stdout)
	}

	var res map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("unable to parse verify output as json: %v, out: %s", err, stdout)
	}
	if valid, ok := res["valid"].(bool); !ok || !valid {
		t.Fatalf("signature reported invalid: %v", res)
	}
	if res["params"] != "Rainbow-III-Compressed" {
		t.Fatalf("unexpected params: %v", res["params"])
	}

	// Verify using the message stored in the signature file
	if _, stderr, err := runCLI(t, 60*time.Second, "verify", "--public-key", kpFile, "--signature", sigFile); err != nil {
		t.Fatalf("verify with embedded message failed: %v, stderr: %s", err, stderr)
	}
}

func TestKeygenExport(t *testing.T) {
	dir := t.TempDir()
	kpFile := keygen(t, dir, "--variant", "compressed", "--seed", testSeed)

	info, err := os.Stat(kpFile)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("key file has mode %v, want 0600", info.Mode().Perm())
	}

	data, err := os.ReadFile(kpFile)
	if err != nil {
		t.Fatal(err)
	}
	var kp keyPairExport
	if err := json.Unmarshal(data, &kp); err != nil {
		t.Fatalf("unable to parse keygen output: %v", err)
	}
	if kp.Params != "Rainbow-III-Compressed" {
		t.Fatalf("unexpected params: %s", kp.Params)
	}
	if kp.PublicKey == "" || kp.SecretKey == "" || kp.KeyHMAC == "" || len(kp.Fingerprint) != 64 {
		t.Fatalf("export missing fields: %+v", kp)
	}

	// The same seed gives the same key
	again := keygen(t, t.TempDir(), "--variant", "compressed", "--seed", testSeed)
	data2, err := os.ReadFile(again)
	if err != nil {
		t.Fatal(err)
	}
	var kp2 keyPairExport
	if err := json.Unmarshal(data2, &kp2); err != nil {
		t.Fatal(err)
	}
	if kp.PublicKey != kp2.PublicKey || kp.SecretKey != kp2.SecretKey {
		t.Fatal("seeded keygen is not deterministic")
	}
}

func TestOutputFormatHex(t *testing.T) {
	dir := t.TempDir()
	kpFile := keygen(t, dir, "--variant", "compressed", "--format", "hex")

	stdout, stderr, err := runCLI(t, 60*time.Second, "sign", "--secret-key", kpFile, "--message", "hex", "--format", "hex")
	if err != nil {
		t.Fatalf("sign failed: %v, stderr: %s", err, stderr)
	}
	var sig signatureExport
	if err := json.Unmarshal([]byte(stdout), &sig); err != nil {
		t.Fatalf("unable to parse sign output: %v", err)
	}
	if sig.Message != "686578" {
		t.Fatalf("message not hex encoded: %s", sig.Message)
	}
	if len(sig.Signature) != 2*(148+16) {
		t.Fatalf("signature has %d hex characters", len(sig.Signature))
	}
}

func TestSignStdinMessage(t *testing.T) {
	dir := t.TempDir()
	kpFile := keygen(t, dir, "--variant", "compressed")
	sigFile := filepath.Join(dir, "sig.json")

	_, stderr, err := runCLIWithStdin(t, 60*time.Second, "from stdin", "sign", "--secret-key", kpFile, "--output", sigFile)
	if err != nil {
		t.Fatalf("sign failed: %v, stderr: %s", err, stderr)
	}
	if _, stderr, err := runCLI(t, 60*time.Second, "verify", "--public-key", kpFile, "--message", "from stdin", "--signature", sigFile); err != nil {
		t.Fatalf("verify failed: %v, stderr: %s", err, stderr)
	}
}

func TestVerifyInvalidSignature(t *testing.T) {
	dir := t.TempDir()
	kpFile := keygen(t, dir, "--variant", "compressed")
	sigFile := filepath.Join(dir, "sig.json")

	if _, stderr, err := runCLI(t, 60*time.Second, "sign", "--secret-key", kpFile, "--message", "original", "--output", sigFile); err != nil {
		t.Fatalf("sign failed: %v, stderr: %s", err, stderr)
	}

	stdout, _, err := runCLI(t, 60*time.Second, "verify", "--public-key", kpFile, "--message", "tampered", "--signature", sigFile)
	if err == nil {
		t.Fatal("verify should exit non-zero for a wrong message")
	}
	if !strings.Contains(stdout, `"valid": false`) {
		t.Fatalf("verify output should report invalid, got: %s", stdout)
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	kpFile := keygen(t, dir, "--variant", "circumzenithal")

	stdout, stderr, err := runCLI(t, 60*time.Second, "inspect", "--key", kpFile)
	if err != nil {
		t.Fatalf("inspect failed: %v, stderr: %s", err, stderr)
	}
	var res map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("unable to parse inspect output: %v", err)
	}
	if res["name"] != "Rainbow-III-Circumzenithal" {
		t.Fatalf("unexpected name: %v", res["name"])
	}
	if _, ok := res["secret_key"]; !ok {
		t.Fatal("inspect output missing secret_key")
	}
}

func TestTamperedKeyFile(t *testing.T) {
	dir := t.TempDir()
	kpFile := keygen(t, dir, "--variant", "compressed")

	data, err := os.ReadFile(kpFile)
	if err != nil {
		t.Fatal(err)
	}
	var kp map[string]interface{}
	if err := json.Unmarshal(data, &kp); err != nil {
		t.Fatal(err)
	}
	kp["key_hmac"] = "AAAA"
	data, _ = json.Marshal(kp)
	if err := os.WriteFile(kpFile, data, 0600); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := runCLI(t, 60*time.Second, "sign", "--secret-key", kpFile, "--message", "x")
	if err == nil {
		t.Fatal("sign should fail with a tampered key file")
	}
	if !strings.Contains(stderr, "integrity") {
		t.Fatalf("unexpected error output: %s", stderr)
	}
}

func TestKeystoreCommands(t *testing.T) {
	dir := t.TempDir()
	kpFile := keygen(t, dir, "--variant", "compressed")
	db := filepath.Join(dir, "keys.db")

	if _, stderr, err := runCLI(t, 60*time.Second, "keystore", "put", "--db", db, "--name", "alice", "--key", kpFile); err != nil {
		t.Fatalf("keystore put failed: %v, stderr: %s", err, stderr)
	}
	if _, _, err := runCLI(t, 60*time.Second, "keystore", "put", "--db", db, "--name", "alice", "--key", kpFile); err == nil {
		t.Fatal("duplicate put should fail")
	}

	stdout, stderr, err := runCLI(t, 60*time.Second, "keystore", "list", "--db", db)
	if err != nil {
		t.Fatalf("keystore list failed: %v, stderr: %s", err, stderr)
	}
	var entries []map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("unable to parse list output: %v, out: %s", err, stdout)
	}
	if len(entries) != 1 || entries[0]["name"] != "alice" || entries[0]["params"] != "Rainbow-III-Compressed" {
		t.Fatalf("unexpected entries: %v", entries)
	}

	exported := filepath.Join(dir, "alice.json")
	if _, stderr, err := runCLI(t, 60*time.Second, "keystore", "get", "--db", db, "--name", "alice", "--output", exported); err != nil {
		t.Fatalf("keystore get failed: %v, stderr: %s", err, stderr)
	}
	sigFile := filepath.Join(dir, "sig.json")
	if _, stderr, err := runCLI(t, 60*time.Second, "sign", "--secret-key", exported, "--message", "stored", "--output", sigFile); err != nil {
		t.Fatalf("sign with exported key failed: %v, stderr: %s", err, stderr)
	}
	if _, stderr, err := runCLI(t, 60*time.Second, "verify", "--public-key", kpFile, "--signature", sigFile); err != nil {
		t.Fatalf("verify failed: %v, stderr: %s", err, stderr)
	}

	if _, stderr, err := runCLI(t, 60*time.Second, "keystore", "delete", "--db", db, "--name", "alice"); err != nil {
		t.Fatalf("keystore delete failed: %v, stderr: %s", err, stderr)
	}
	if _, _, err := runCLI(t, 60*time.Second, "keystore", "get", "--db", db, "--name", "alice"); err == nil {
		t.Fatal("get after delete should fail")
	}
}

func TestBenchmarkCommand(t *testing.T) {
	stdout, stderr, err := runCLI(t, 120*time.Second, "benchmark", "--variant", "compressed", "--iterations", "1")
	if err != nil {
		t.Fatalf("benchmark failed: %v, stderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "Benchmark complete!") {
		t.Fatalf("benchmark output unexpected: %s", stdout)
	}
}

func TestMissingRequiredFlag(t *testing.T) {
	_, stderr, err := runCLI(t, 30*time.Second, "sign", "--message", "x")
	if err == nil || !strings.Contains(stderr, "--secret-key is required") {
		t.Fatalf("expected missing flag error, got err=%v stderr=%s", err, stderr)
	}
}

func TestInvalidSecurityLevel(t *testing.T) {
	_, stderr, err := runCLI(t, 30*time.Second, "keygen", "--level", "4")
	if err == nil || !strings.Contains(stderr, "invalid security level") {
		t.Fatalf("expected invalid level error, got err=%v stderr=%s", err, stderr)
	}
}
