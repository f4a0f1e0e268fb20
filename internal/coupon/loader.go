package coupon

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for gzipped policy files on the local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based policy loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "coupon-loader").Logger(),
	}
}

// Load reads a gzipped policy file with one "CODE TYPE [RATE]" entry per line.
func (l *fileLoader) Load(ctx context.Context, filePath string) (PolicySet, error) {
	log := l.logger.With().Str("file", filePath).Logger()

	file, err := os.Open(filePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to open policy file")
		return nil, fmt.Errorf("failed to open policy file %s: %w", filePath, err)
	}
	defer file.Close()

	set, err := readGzipPolicies(ctx, file, filePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to read policy file")
		return nil, err
	}

	log.Info().Int("policies_loaded", set.Size()).Msg("policy file loaded")
	return set, nil
}

// readGzipPolicies decompresses r and parses the policy lines inside.
func readGzipPolicies(ctx context.Context, r io.Reader, source string) (*MapPolicySet, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gz.Close()

	return readPolicies(ctx, gz, source)
}

// WritePolicies writes set to w as a gzipped policy file.
func WritePolicies(w io.Writer, set PolicySet) error {
	gzipWriter := gzip.NewWriter(w)

	if _, err := fmt.Fprintln(gzipWriter, "# CODE TYPE [RATE]"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, code := range set.Codes() {
		effect, _ := set.Lookup(code)
		if _, err := fmt.Fprintln(gzipWriter, FormatPolicyLine(code, effect)); err != nil {
			return fmt.Errorf("failed to write policy %s: %w", code, err)
		}
	}

	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush gzip stream: %w", err)
	}
	return nil
}

// WritePolicyFile creates filePath and writes set to it.
func WritePolicyFile(filePath string, set PolicySet) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := WritePolicies(file, set); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
