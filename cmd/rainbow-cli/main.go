// Package main provides the rainbow-cli command line interface for Rainbow
// signature operations.
package main

import (
	"crypto/hmac"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	rainbow "github.com/BackendStack21/rainbow-go"
	"github.com/BackendStack21/rainbow-go/core"
	"github.com/BackendStack21/rainbow-go/keystore"
	"github.com/BackendStack21/rainbow-go/sign"
	"github.com/BackendStack21/rainbow-go/utils"
	"golang.org/x/crypto/sha3"
)

const (
	version = "1.0.0"
	appName = "rainbow-cli"
)

// OutputFormat represents the output format for serialization
type OutputFormat string

const (
	FormatHex    OutputFormat = "hex"
	FormatBase64 OutputFormat = "base64"
)

// CLIConfig holds CLI configuration
type CLIConfig struct {
	Params       rainbow.Params
	OutputFormat OutputFormat
	OutputFile   string
	InputFile    string
	Verbose      bool
	Timing       bool
}

// KeyPairExport represents an exported key pair. SecretKey is empty for
// public-only exports.
type KeyPairExport struct {
	Params      string `json:"params"`
	PublicKey   string `json:"public_key"`
	SecretKey   string `json:"secret_key,omitempty"`
	Fingerprint string `json:"fingerprint"`
	CreatedAt   string `json:"created_at"`
	KeyHMAC     string `json:"key_hmac,omitempty"` // HMAC for integrity verification
}

// SignatureExport represents an exported signature
type SignatureExport struct {
	Params    string `json:"params"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version":
		fmt.Printf("%s version %s\n", appName, version)
		fmt.Printf("Rainbow library version %s\n", rainbow.Version)
	case "keygen":
		cmdKeygen(os.Args[2:])
	case "sign":
		cmdSign(os.Args[2:])
	case "verify":
		cmdVerify(os.Args[2:])
	case "inspect":
		cmdInspect(os.Args[2:])
	case "benchmark":
		cmdBenchmark(os.Args[2:])
	case "keystore":
		handleKeystore(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - Rainbow Multivariate Signature CLI

USAGE:
    %s <COMMAND> [OPTIONS]

COMMANDS:
    keygen      Generate a new key pair
    sign        Sign a message
    verify      Verify a signature
    inspect     Show details of a key file
    benchmark   Run performance benchmarks
    keystore    Manage keys in a local key store (put|get|list|delete)
    version     Show version information
    help        Show this help message

OPTIONS:
    --level <3|5>               Security strength (default: 3)
    --variant <classic|circumzenithal|compressed>
                                Key variant (default: circumzenithal)
    --seed <hex>                64-byte seed (sk_seed || pk_seed) for keygen
    --output <file>             Output file (default: stdout)
    --format <hex|base64>       Output encoding (default: base64)
    --timing                    Show timing information
    --verbose                   Verbose output

EXAMPLES:
    # Generate a key pair
    %s keygen --level 3 --variant compressed --output kp.json

    # Sign a message
    %s sign --secret-key kp.json --message "Document to sign" --output sig.json

    # Verify a signature (exit code 0 if valid, 1 otherwise)
    %s verify --public-key kp.json --signature sig.json

    # Store and list keys
    %s keystore put --db keys.db --name alice --key kp.json
    %s keystore list --db keys.db

    # Run benchmarks
    %s benchmark --level 3 --iterations 10

For more information, visit: https://github.com/BackendStack21/rainbow-go
`, appName, appName, appName, appName, appName, appName, appName, appName)
}

// ============================================================================
// Key Commands
// ============================================================================

// generateKeyHMAC computes a SHA3-256 HMAC of key material for basic integrity verification.
// WARNING: This only detects accidental corruption, NOT malicious tampering. The HMAC uses
// the public key as the key material, which is not secret, so an attacker can easily forge
// valid HMACs. Sign the key file if tampering matters.
func generateKeyHMAC(publicKey string, secretKey string) string {
	h := hmac.New(sha3.New256, []byte(publicKey))
	h.Write([]byte(secretKey))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// exportKeyPair builds the JSON export for kp. kp.SecretKey may be nil.
func exportKeyPair(kp *rainbow.KeyPair, format OutputFormat, created time.Time) (*KeyPairExport, error) {
	pkBytes, err := sign.MarshalKey(kp.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("encoding public key: %w", err)
	}
	fp, err := sign.Fingerprint(kp.PublicKey)
	if err != nil {
		return nil, err
	}
	export := &KeyPairExport{
		Params:      kp.PublicKey.Params().Name(),
		PublicKey:   encodeBytes(pkBytes, format),
		Fingerprint: hex.EncodeToString(fp),
		CreatedAt:   created.UTC().Format(time.RFC3339),
	}
	if kp.SecretKey != nil {
		skBytes, err := sign.MarshalKey(kp.SecretKey)
		if err != nil {
			return nil, fmt.Errorf("encoding secret key: %w", err)
		}
		export.SecretKey = encodeBytes(skBytes, format)
		utils.Zeroize(skBytes)
	}
	export.KeyHMAC = generateKeyHMAC(export.PublicKey, export.SecretKey)
	return export, nil
}

func cmdKeygen(args []string) {
	config := parseConfig(args)
	seedHex := getArg(args, "--seed", "-s")

	start := time.Now()
	var kp *rainbow.KeyPair
	var err error
	if seedHex != "" {
		seed, derr := hex.DecodeString(seedHex)
		if derr != nil || len(seed) != 2*core.SeedLen {
			fmt.Fprintf(os.Stderr, "Error: --seed must be %d hex characters\n", 4*core.SeedLen)
			os.Exit(1)
		}
		kp, err = sign.GenerateKeyPairFromSeed(config.Params, seed[:core.SeedLen], seed[core.SeedLen:])
		utils.Zeroize(seed)
	} else {
		kp, err = sign.GenerateKeyPair(nil, config.Params)
	}
	elapsed := time.Since(start)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating key pair: %v\n", err)
		os.Exit(1)
	}

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Key generation took: %v\n", elapsed)
	}

	export, err := exportKeyPair(kp, config.OutputFormat, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting key pair: %v\n", err)
		os.Exit(1)
	}

	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}

	writeOutput(output, config.OutputFile)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Generated %s key pair\n", config.Params.Name())
		fmt.Fprintf(os.Stderr, "Public key size: %d bytes\n", sign.KeySize(kp.PublicKey.Kind(), config.Params))
		fmt.Fprintf(os.Stderr, "Secret key size: %d bytes\n", sign.KeySize(kp.SecretKey.Kind(), config.Params))
		fmt.Fprintf(os.Stderr, "Fingerprint: %s\n", export.Fingerprint)
	}
}

func cmdSign(args []string) {
	config := parseConfig(args)
	skFile := getArg(args, "--secret-key", "-sk")

	if skFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --secret-key is required\n")
		os.Exit(1)
	}

	msgBytes, err := readMessage(args, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading message: %v\n", err)
		os.Exit(1)
	}

	kp, err := loadKeyPairFromFile(skFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading secret key: %v\n", err)
		os.Exit(1)
	}
	if kp.SecretKey == nil {
		fmt.Fprintf(os.Stderr, "Error: %s does not contain a secret key\n", skFile)
		os.Exit(1)
	}

	start := time.Now()
	sig, err := sign.Sign(nil, kp.SecretKey, msgBytes)
	elapsed := time.Since(start)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing: %v\n", err)
		os.Exit(1)
	}

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Signing took: %v\n", elapsed)
	}

	export := SignatureExport{
		Params:    kp.SecretKey.Params().Name(),
		Message:   encodeBytes(msgBytes, config.OutputFormat),
		Signature: encodeBytes(sig, config.OutputFormat),
	}

	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}

	writeOutput(output, config.OutputFile)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Signature successful\n")
		fmt.Fprintf(os.Stderr, "Message size: %d bytes\n", len(msgBytes))
		fmt.Fprintf(os.Stderr, "Signature size: %d bytes\n", len(sig))
	}
}

func cmdVerify(args []string) {
	config := parseConfig(args)
	pkFile := getArg(args, "--public-key", "-pk")
	sigFile := getArg(args, "--signature", "-sig")

	if pkFile == "" || sigFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --public-key and --signature are required\n")
		os.Exit(1)
	}

	msgBytes, err := readMessage(args, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading message: %v\n", err)
		os.Exit(1)
	}
	if msgBytes == nil {
		// Fall back to the message embedded in the signature file
		sigData, err := readLimitedFile(sigFile, utils.MaxKeyFileSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading signature file: %v\n", err)
			os.Exit(1)
		}
		var sigExport SignatureExport
		if err := json.Unmarshal(sigData, &sigExport); err == nil && sigExport.Message != "" {
			msgBytes, err = decodeString(sigExport.Message)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error decoding message: %v\n", err)
				os.Exit(1)
			}
		}
	}

	if msgBytes == nil {
		fmt.Fprintf(os.Stderr, "Error: message is required (use --message, --input, or include in signature file)\n")
		os.Exit(1)
	}

	kp, err := loadKeyPairFromFile(pkFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading public key: %v\n", err)
		os.Exit(1)
	}
	if kp.PublicKey == nil {
		fmt.Fprintf(os.Stderr, "Error: %s does not contain a public key\n", pkFile)
		os.Exit(1)
	}

	sig, err := loadFieldFromFile(sigFile, "signature")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading signature: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	valid := sign.Verify(kp.PublicKey, msgBytes, sig)
	elapsed := time.Since(start)

	if config.Timing {
		fmt.Fprintf(os.Stderr, "Verification took: %v\n", elapsed)
	}

	result := map[string]interface{}{
		"valid":   valid,
		"params":  kp.PublicKey.Params().Name(),
		"message": encodeBytes(msgBytes, config.OutputFormat),
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}

	writeOutput(output, config.OutputFile)

	if valid {
		if config.Verbose {
			fmt.Fprintf(os.Stderr, "✓ Signature is VALID\n")
		}
		os.Exit(0)
	} else {
		if config.Verbose {
			fmt.Fprintf(os.Stderr, "✗ Signature is INVALID\n")
		}
		os.Exit(1)
	}
}

// keyInfo is the inspect output for one key.
type keyInfo struct {
	Kind string `json:"kind"`
	Size int    `json:"size"`
}

func cmdInspect(args []string) {
	config := parseConfig(args)
	keyFile := getArg(args, "--key", "-k")

	if keyFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --key is required\n")
		os.Exit(1)
	}

	kp, err := loadKeyPairFromFile(keyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading key: %v\n", err)
		os.Exit(1)
	}

	var p rainbow.Params
	if kp.PublicKey != nil {
		p = kp.PublicKey.Params()
	} else {
		p = kp.SecretKey.Params()
	}

	result := map[string]interface{}{
		"params":         p,
		"name":           p.Name(),
		"signature_size": p.SignatureSize(),
	}
	if kp.PublicKey != nil {
		fp, err := sign.Fingerprint(kp.PublicKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error computing fingerprint: %v\n", err)
			os.Exit(1)
		}
		result["fingerprint"] = hex.EncodeToString(fp)
		result["public_key"] = keyInfo{Kind: kp.PublicKey.Kind().String(), Size: sign.KeySize(kp.PublicKey.Kind(), p)}
	}
	if kp.SecretKey != nil {
		result["secret_key"] = keyInfo{Kind: kp.SecretKey.Kind().String(), Size: sign.KeySize(kp.SecretKey.Kind(), p)}
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}

	writeOutput(output, config.OutputFile)
}

// ============================================================================
// Keystore Commands
// ============================================================================

func handleKeystore(args []string) {
	if len(args) < 1 {
		printKeystoreUsage()
		os.Exit(1)
	}

	subcommand := args[0]
	switch subcommand {
	case "put":
		keystorePut(args[1:])
	case "get":
		keystoreGet(args[1:])
	case "list", "ls":
		keystoreList(args[1:])
	case "delete", "rm":
		keystoreDelete(args[1:])
	case "help", "--help", "-h":
		printKeystoreUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown keystore subcommand: %s\n", subcommand)
		printKeystoreUsage()
		os.Exit(1)
	}
}

func printKeystoreUsage() {
	fmt.Printf(`%s keystore - Local key store operations

USAGE:
    %s keystore <SUBCOMMAND> --db <path> [OPTIONS]

SUBCOMMANDS:
    put         Store a key file under --name (requires --key)
    get         Export the key pair stored under --name
    list        List stored keys
    delete      Remove the key stored under --name
    help        Show this help message

EXAMPLES:
    %s keystore put --db keys.db --name alice --key kp.json
    %s keystore get --db keys.db --name alice --output alice.json
    %s keystore list --db keys.db
    %s keystore delete --db keys.db --name alice
`, appName, appName, appName, appName, appName, appName)
}

// openKeystore opens the store named by --db and returns the --name value.
func openKeystore(args []string, needName bool) (*keystore.Store, string) {
	dbPath := getArg(args, "--db", "-d")
	name := getArg(args, "--name", "-n")

	if dbPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --db is required\n")
		os.Exit(1)
	}
	if needName && name == "" {
		fmt.Fprintf(os.Stderr, "Error: --name is required\n")
		os.Exit(1)
	}

	store, err := keystore.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening key store: %v\n", err)
		os.Exit(1)
	}
	return store, name
}

func keystorePut(args []string) {
	config := parseConfig(args)
	keyFile := getArg(args, "--key", "-k")
	if keyFile == "" {
		fmt.Fprintf(os.Stderr, "Error: --key is required\n")
		os.Exit(1)
	}

	kp, err := loadKeyPairFromFile(keyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading key: %v\n", err)
		os.Exit(1)
	}

	store, name := openKeystore(args, true)
	err = store.Put(name, kp)
	store.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error storing key: %v\n", err)
		os.Exit(1)
	}

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Stored %s key pair as %q\n", kp.PublicKey.Params().Name(), name)
	}
}

func keystoreGet(args []string) {
	config := parseConfig(args)
	publicOnly := hasFlag(args, "--public-only", "-p")

	store, name := openKeystore(args, true)
	kp, err := store.Get(name)
	if err != nil {
		store.Close()
		fmt.Fprintf(os.Stderr, "Error loading key: %v\n", err)
		os.Exit(1)
	}
	meta, err := store.Meta(name)
	store.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading metadata: %v\n", err)
		os.Exit(1)
	}

	if publicOnly {
		kp.SecretKey = nil
	}
	export, err := exportKeyPair(kp, config.OutputFormat, meta.CreatedAt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting key pair: %v\n", err)
		os.Exit(1)
	}

	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}

	writeOutput(output, config.OutputFile)
}

func keystoreList(args []string) {
	config := parseConfig(args)

	store, _ := openKeystore(args, false)
	entries, err := store.List()
	store.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing keys: %v\n", err)
		os.Exit(1)
	}

	type listed struct {
		Name string `json:"name"`
		keystore.Meta
	}
	out := make([]listed, 0, len(entries))
	for _, e := range entries {
		out = append(out, listed{Name: e.Name, Meta: e.Meta})
	}

	output, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}

	writeOutput(output, config.OutputFile)
}

func keystoreDelete(args []string) {
	config := parseConfig(args)

	store, name := openKeystore(args, true)
	err := store.Delete(name)
	store.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting key: %v\n", err)
		if errors.Is(err, keystore.ErrNotFound) {
			os.Exit(2)
		}
		os.Exit(1)
	}

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Deleted %q\n", name)
	}
}

// ============================================================================
// Benchmark Command
// ============================================================================

func cmdBenchmark(args []string) {
	config := parseConfig(args)
	iterationsStr := getArg(args, "--iterations", "-n")

	iterations := 10
	if iterationsStr != "" {
		_, _ = fmt.Sscanf(iterationsStr, "%d", &iterations)
	}

	if iterations < 1 {
		iterations = 1
	}

	p := config.Params
	fmt.Printf("Rainbow Benchmark Results\n")
	fmt.Printf("=========================\n")
	fmt.Printf("Parameter Set: %s (n=%d, m=%d)\n", p.Name(), p.N, p.M)
	fmt.Printf("Iterations: %d\n\n", iterations)

	// KeyGen
	var keygenTotal time.Duration
	var kp *rainbow.KeyPair
	for i := 0; i < iterations; i++ {
		start := time.Now()
		var err error
		kp, err = sign.GenerateKeyPair(nil, p)
		keygenTotal += time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Keygen error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("  KeyGen:      %v (avg)\n", keygenTotal/time.Duration(iterations))

	// Sign
	testMessage := []byte(strings.Repeat("Hello, Rainbow!", 10))
	var signTotal time.Duration
	var sig []byte
	for i := 0; i < iterations; i++ {
		start := time.Now()
		var err error
		sig, err = sign.Sign(nil, kp.SecretKey, testMessage)
		signTotal += time.Since(start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Sign error: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("  Sign:        %v (avg)\n", signTotal/time.Duration(iterations))

	// Verify
	var verifyTotal time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		valid := sign.Verify(kp.PublicKey, testMessage, sig)
		verifyTotal += time.Since(start)
		if !valid {
			fmt.Fprintf(os.Stderr, "Verify failed\n")
			os.Exit(1)
		}
	}
	fmt.Printf("  Verify:      %v (avg)\n", verifyTotal/time.Duration(iterations))

	fmt.Println()
	fmt.Printf("  Public key:  %d bytes\n", sign.KeySize(kp.PublicKey.Kind(), p))
	fmt.Printf("  Secret key:  %d bytes\n", sign.KeySize(kp.SecretKey.Kind(), p))
	fmt.Printf("  Signature:   %d bytes\n", len(sig))
	fmt.Println()
	fmt.Println("Benchmark complete!")
}

// ============================================================================
// Utility Functions
// ============================================================================

func parseConfig(args []string) CLIConfig {
	config := CLIConfig{
		OutputFormat: FormatBase64,
	}

	strength := rainbow.StrengthIII
	if level := getArg(args, "--level", "-l"); level != "" {
		s, err := core.ParseStrength(level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid security level '%s'. Must be one of: 3, 5\n", level)
			os.Exit(1)
		}
		strength = s
	}

	variant := rainbow.Circumzenithal
	if v := getArg(args, "--variant", "-V"); v != "" {
		parsed, err := core.ParseVariant(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid variant '%s'. Must be one of: classic, circumzenithal, compressed\n", v)
			os.Exit(1)
		}
		variant = parsed
	}

	params, err := core.GetParams(strength, variant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	config.Params = params

	format := getArg(args, "--format", "-f")
	switch format {
	case "hex":
		config.OutputFormat = FormatHex
	case "base64":
		config.OutputFormat = FormatBase64
	case "":
		// No format specified, use default
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid format '%s'. Must be one of: hex, base64\n", format)
		os.Exit(1)
	}

	config.OutputFile = getArg(args, "--output", "-o")
	config.InputFile = getArg(args, "--input", "-i")
	config.Verbose = hasFlag(args, "--verbose", "-v")
	config.Timing = hasFlag(args, "--timing", "-t")

	return config
}

func getArg(args []string, long, short string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == long || args[i] == short {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, long, short string) bool {
	for _, arg := range args {
		if arg == long || arg == short {
			return true
		}
	}
	return false
}

// readMessage returns the --message value or the --input file contents.
// With neither flag it reads stdin when fromStdin is set and returns nil
// otherwise.
func readMessage(args []string, fromStdin bool) ([]byte, error) {
	if message := getArg(args, "--message", "-m"); message != "" {
		return []byte(message), nil
	}
	if inputFile := getArg(args, "--input", "-i"); inputFile != "" {
		return readLimitedFile(inputFile, utils.MaxMessageSize)
	}
	if !fromStdin {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(os.Stdin, utils.MaxMessageSize+1))
	if err != nil {
		return nil, err
	}
	if err := utils.CheckLength(len(data), utils.MaxMessageSize); err != nil {
		return nil, fmt.Errorf("stdin: %w", err)
	}
	return data, nil
}

func encodeBytes(data []byte, format OutputFormat) string {
	switch format {
	case FormatHex:
		return hex.EncodeToString(data)
	case FormatBase64:
		return base64.StdEncoding.EncodeToString(data)
	default:
		return base64.StdEncoding.EncodeToString(data)
	}
}

func decodeString(s string) ([]byte, error) {
	// Try hex first; a hex string of suitable length is also valid base64
	if data, err := hex.DecodeString(s); err == nil {
		return data, nil
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return nil, fmt.Errorf("unable to decode string")
}

// readLimitedFile reads a file after checking its size against limit.
func readLimitedFile(filename string, limit int) ([]byte, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() > int64(limit) {
		return nil, fmt.Errorf("input file too large: %d > %d bytes", info.Size(), limit)
	}
	return os.ReadFile(filename)
}

// loadKeyPairFromFile loads a key pair from a JSON export or from a raw,
// base64 or hex encoded key. The HMAC of JSON exports is checked when
// present. A file holding only a secret key yields a nil PublicKey unless
// the key is compressed, in which case the public key is derived.
func loadKeyPairFromFile(filename string) (*rainbow.KeyPair, error) {
	data, err := readLimitedFile(filename, utils.MaxKeyFileSize)
	if err != nil {
		return nil, err
	}

	var export KeyPairExport
	if err := json.Unmarshal(data, &export); err == nil && export.PublicKey != "" {
		if export.KeyHMAC != "" {
			want := generateKeyHMAC(export.PublicKey, export.SecretKey)
			if !hmac.Equal([]byte(want), []byte(export.KeyHMAC)) {
				return nil, errors.New("key file integrity check failed")
			}
		}
		kp := &rainbow.KeyPair{}
		if kp.PublicKey, err = decodeKey(export.PublicKey); err != nil {
			return nil, fmt.Errorf("public key: %w", err)
		}
		if !kp.PublicKey.Kind().IsPublic() {
			return nil, fmt.Errorf("public_key field holds a %s key", kp.PublicKey.Kind())
		}
		if export.SecretKey != "" {
			if kp.SecretKey, err = decodeKey(export.SecretKey); err != nil {
				return nil, fmt.Errorf("secret key: %w", err)
			}
		}
		return kp, nil
	}

	// Single encoded key
	key, err := sign.UnmarshalKey(data)
	if err != nil {
		key, err = decodeKey(strings.TrimSpace(string(data)))
	}
	if err != nil {
		return nil, fmt.Errorf("unable to parse key file: %w", err)
	}
	if key.Kind().IsPublic() {
		return &rainbow.KeyPair{PublicKey: key}, nil
	}
	return &rainbow.KeyPair{SecretKey: key, PublicKey: derivePublicKey(key)}, nil
}

func decodeKey(s string) (rainbow.Key, error) {
	raw, err := decodeString(s)
	if err != nil {
		return nil, err
	}
	return sign.UnmarshalKey(raw)
}

// derivePublicKey recovers the public key of a compressed secret key. Full
// secret keys do not carry the public seed, so nil is returned for them.
func derivePublicKey(sk rainbow.Key) rainbow.Key {
	csk, ok := sk.(*rainbow.CompressedSecretKey)
	if !ok {
		return nil
	}
	kp, err := sign.GenerateKeyPairFromSeed(csk.Params(), csk.SkSeed(), csk.PkSeed())
	if err != nil {
		return nil
	}
	return kp.PublicKey
}

// loadFieldFromFile returns a decoded JSON string field, or the whole file
// decoded as base64 or hex.
func loadFieldFromFile(filename, field string) ([]byte, error) {
	data, err := readLimitedFile(filename, utils.MaxKeyFileSize)
	if err != nil {
		return nil, err
	}

	var jsonData map[string]interface{}
	if err := json.Unmarshal(data, &jsonData); err == nil {
		if val, ok := jsonData[field]; ok {
			if strVal, ok := val.(string); ok {
				return decodeString(strVal)
			}
		}
		return nil, fmt.Errorf("missing %q field", field)
	}

	trimmed := strings.TrimSpace(string(data))
	if decoded, err := decodeString(trimmed); err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("unable to parse file format")
}

func writeOutput(data []byte, filename string) {
	if filename != "" {
		// Key files hold secrets: owner read-write only.
		f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		if _, err := f.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}

		// Ensure permissions are enforced even if the file already existed
		if err := os.Chmod(filename, 0600); err != nil {
			fmt.Fprintf(os.Stderr, "Error setting file permissions: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(string(data))
	}
}
