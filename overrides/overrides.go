// Package overrides provides methods for loading curator-supplied coordinate corrections and title/description rules.
package overrides

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/whosonfirst/go-reader/v2"
)

// readOptional reads 'path' from 'r'. A missing file yields a nil body and no error since override and
// rule files are optional inputs. Any other failure (permissions, an unreachable bucket) is returned.
func readOptional(ctx context.Context, r reader.Reader, path string) ([]byte, error) {

	logger := slog.Default()
	logger = logger.With("path", path)

	exists, err := r.Exists(ctx, path)

	if err != nil {
		return nil, fmt.Errorf("Failed to determine whether %s exists, %w", path, err)
	}

	if !exists {
		logger.Debug("Optional file does not exist")
		return nil, nil
	}

	fh, err := r.Read(ctx, path)

	if err != nil {

		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("Optional file does not exist")
			return nil, nil
		}

		return nil, fmt.Errorf("Failed to open %s, %w", path, err)
	}

	defer fh.Close()

	body, err := io.ReadAll(fh)

	if err != nil {
		return nil, fmt.Errorf("Failed to read %s, %w", path, err)
	}

	body = bytes.TrimSpace(body)

	if len(body) == 0 {
		return nil, nil
	}

	return body, nil
}
