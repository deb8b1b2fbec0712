package cmd

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReadHex(t *testing.T) {
	out, err := run(t, "", "read", "--half-bits", "32", "--bytes", "8", "--format", "hex", "--pool", "random")
	require.NoError(t, err)

	b, err := hex.DecodeString(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Len(t, b, 8)
}

func TestReadRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "", "read", "--half-bits", "32", "--bytes", "1", "--format", "base64", "--pool", "random")
	assert.Error(t, err)
}

func TestReadMemoryPool(t *testing.T) {
	out, err := run(t, "", "read", "--half-bits", "32", "--bytes", "4", "--format", "raw", "--pool", "memory", "--pool-size", "2")
	require.NoError(t, err)
	assert.Len(t, out, 4)
}

func TestReadRejectsNegativePoolSize(t *testing.T) {
	_, err := run(t, "", "read", "--half-bits", "32", "--bytes", "4", "--pool", "memory", "--pool-size", "-1")
	assert.Error(t, err)
}

func TestCloseWithReportsReleaseError(t *testing.T) {
	failing := func() error { return errors.New("disk full") }

	var err error
	closeWith(&err, failing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	first := errors.New("write failed")
	err = first
	closeWith(&err, failing)
	assert.Equal(t, first, err)

	err = nil
	closeWith(&err, func() error { return nil })
	assert.NoError(t, err)
}

func TestPoolFillCountAndRead(t *testing.T) {
	db := filepath.Join(t.TempDir(), "primes.db")

	out, err := run(t, "", "pool", "fill", "--db", db, "--bits", "32", "--count", "3")
	require.NoError(t, err)
	assert.Equal(t, "3", strings.TrimSpace(out))

	_, err = run(t, "", "read", "--half-bits", "32", "--bytes", "2", "--format", "hex", "--pool", "bolt", "--db", db)
	require.NoError(t, err)

	out, err = run(t, "", "pool", "count", "--db", db, "--bits", "32")
	require.NoError(t, err)
	assert.Equal(t, "1", strings.TrimSpace(out))
}

func TestDemoWithFlags(t *testing.T) {
	out, err := run(t, "", "demo", "--prime-bits", "24", "--output-bits", "16")
	require.NoError(t, err)

	for _, key := range []string{"p=", "q=", "n=", "phi_n=", "fingerprint=Qm", "x="} {
		assert.Contains(t, out, key)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	v, ok := new(big.Int).SetString(lines[len(lines)-1], 10)
	require.True(t, ok, out)
	assert.True(t, v.BitLen() <= 16)
}

func TestDemoPrompts(t *testing.T) {
	out, err := run(t, "20\n8\n", "demo", "--prime-bits", "0", "--output-bits", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "prime bit count: ")
	assert.Contains(t, out, "output bit count: ")
}

func TestDemoPromptRejectsGarbage(t *testing.T) {
	_, err := run(t, "many\n", "demo", "--prime-bits", "0", "--output-bits", "0")
	assert.Error(t, err)
}
