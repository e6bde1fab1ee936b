package jurisdiction

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for gzipped table files on local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based jurisdiction loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "jurisdiction-loader").Logger(),
	}
}

// Load reads a gzipped table file.
func (l *fileLoader) Load(ctx context.Context, filePath string) (Set, error) {
	l.logger.Info().Str("file", filePath).Msg("loading jurisdiction table")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open jurisdiction table")
		return nil, fmt.Errorf("failed to open jurisdiction table %s: %w", filePath, err)
	}
	defer file.Close()

	set, err := decode(ctx, file, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to decode jurisdiction table")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("jurisdictions_loaded", set.Size()).
		Msg("jurisdiction table loaded")

	return set, nil
}
