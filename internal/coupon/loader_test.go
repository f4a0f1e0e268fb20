package coupon

import (
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestPolicyFile creates a gzipped policy file with the given raw lines.
func createTestPolicyFile(t *testing.T, filename string, lines []string) string {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), filename)

	file, err := os.Create(filePath)
	require.NoError(t, err)
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, line := range lines {
		_, err := gzipWriter.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}

	return filePath
}

func TestFileLoader_Load_Success(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestPolicyFile(t, "policies.gz", []string{
		"# seasonal coupons",
		"NATAL15 percent_discount 0.15",
		"",
		"  FRETEGRATIS free_shipping  ",
		"BLACK50 percent_discount 0.50",
	})

	set, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, 3, set.Size())
	assert.Equal(t, []string{"BLACK50", "FRETEGRATIS", "NATAL15"}, set.Codes())

	effect, ok := set.Lookup("NATAL15")
	require.True(t, ok)
	assert.Equal(t, EffectPercentDiscount, effect.Type)
	assert.Equal(t, "0.15", effect.Rate.String())
}

func TestFileLoader_Load_DuplicateCodesLastWins(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestPolicyFile(t, "dupes.gz", []string{
		"DUP percent_discount 0.10",
		"DUP percent_discount 0.30",
	})

	set, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	assert.Equal(t, 1, set.Size())
	effect, _ := set.Lookup("DUP")
	assert.Equal(t, "0.3", effect.Rate.String())
}

func TestFileLoader_Load_MalformedLine(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestPolicyFile(t, "bad.gz", []string{
		"GOOD free_shipping",
		"BAD percent_discount",
	})

	set, err := loader.Load(context.Background(), filePath)

	require.Error(t, err)
	assert.Nil(t, set)
	assert.Contains(t, err.Error(), ":2:")
}

func TestFileLoader_Load_FileNotFound(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	set, err := loader.Load(context.Background(), "/nonexistent/path/to/file.gz")

	require.Error(t, err)
	assert.Nil(t, set)
	assert.Contains(t, err.Error(), "failed to open policy file")
}

func TestFileLoader_Load_InvalidGzip(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := filepath.Join(t.TempDir(), "invalid.gz")
	require.NoError(t, os.WriteFile(filePath, []byte("not a gzip file"), 0644))

	set, err := loader.Load(context.Background(), filePath)

	require.Error(t, err)
	assert.Nil(t, set)
	assert.Contains(t, err.Error(), "failed to create gzip reader")
}

func TestFileLoader_Load_ContextCancellation(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	lines := make([]string, 50_000)
	for i := range lines {
		lines[i] = fmt.Sprintf("CODE%06d free_shipping", i)
	}
	filePath := createTestPolicyFile(t, "large.gz", lines)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set, err := loader.Load(ctx, filePath)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, set)
}

func TestFileLoader_Load_EmptyFile(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	filePath := createTestPolicyFile(t, "empty.gz", []string{})

	set, err := loader.Load(context.Background(), filePath)

	require.NoError(t, err)
	require.NotNil(t, set)
	assert.Equal(t, 0, set.Size())
}

func TestWritePolicyFile_RoundTrip(t *testing.T) {
	filePath := filepath.Join(t.TempDir(), "defaults.gz")

	require.NoError(t, WritePolicyFile(filePath, DefaultPolicies()))

	set, err := NewFileLoader(zerolog.Nop()).Load(context.Background(), filePath)
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicies().Codes(), set.Codes())

	for _, code := range set.Codes() {
		want, _ := DefaultPolicies().Lookup(code)
		got, _ := set.Lookup(code)
		assert.Equal(t, want.Type, got.Type)
		assert.True(t, want.Rate.Equal(got.Rate))
	}
}
