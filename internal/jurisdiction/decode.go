package jurisdiction

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Ledger1-ai/portalpay-official-sub010/internal/model"

	"github.com/shopspring/decimal"
)

// decode reads gzipped JSON lines from r. Blank lines and lines starting with
// '#' are skipped.
func decode(ctx context.Context, r io.Reader, source string) (*mapSet, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	set := newMapSet(256)

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var j model.TaxJurisdiction
		if err := json.Unmarshal([]byte(line), &j); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, lineNo, err)
		}
		if normalizeCode(j.Code) == "" {
			return nil, fmt.Errorf("%s line %d: jurisdiction code is required", source, lineNo)
		}
		if j.Rate.IsNegative() || j.Rate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("%s line %d: rate %s outside [0,1]", source, lineNo, j.Rate)
		}
		set.Add(j)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", source, err)
	}
	return set, nil
}
