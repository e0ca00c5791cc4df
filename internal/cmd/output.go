package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oarkflow/mebel/internal/result"
	"github.com/oarkflow/mebel/internal/upload"
)

// outcome prints the success message of res, or turns its failure into the
// command error.
func outcome[T any](w io.Writer, res result.Result[T]) (T, error) {
	data, err := res.Unwrap()
	if err != nil {
		return data, errors.New(res.Err())
	}
	if msg := res.Message(); msg != "" {
		fmt.Fprintf(w, "✓ %s\n", msg)
	}
	return data, nil
}

// imageInput turns an --image/--avatar flag into gateway input: URLs and
// data URLs pass through, anything else is read as a local file. An empty
// value passes through as "".
func imageInput(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" || upload.IsReference(value) || upload.IsDataURL(value) {
		return value, nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image file %s is empty", value)
	}
	return upload.EncodeDataURL(data), nil
}
