package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	originModel "github.com/Avi18971911/Locus/internal/pipeline/origin/model"
	pickModel "github.com/Avi18971911/Locus/internal/pipeline/pick/model"
	"github.com/klauspost/compress/gzip"
)

type Format string

const (
	JsonFormat  Format = "json"
	ZJsonFormat Format = "zjson"
)

const stdinPath = "-"

func ParseFormat(format string) (Format, error) {
	switch Format(format) {
	case JsonFormat, ZJsonFormat:
		return Format(format), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// LoadBatch reads the picks of an event parameters document. "-" reads standard input.
// A positive limit keeps only the first picks of the document.
func LoadBatch(path string, format Format, limit int) ([]pickModel.Pick, error) {
	var source io.Reader
	if path == stdinPath {
		source = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("error opening batch input %s: %w", path, err)
		}
		defer file.Close()
		source = file
	}
	return ReadBatch(source, format, limit)
}

func ReadBatch(source io.Reader, format Format, limit int) ([]pickModel.Pick, error) {
	switch format {
	case JsonFormat:
	case ZJsonFormat:
		gz, err := gzip.NewReader(source)
		if err != nil {
			return nil, fmt.Errorf("error opening compressed batch input: %w", err)
		}
		defer gz.Close()
		source = gz
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	var ep originModel.EventParameters
	if err := json.NewDecoder(source).Decode(&ep); err != nil {
		return nil, fmt.Errorf("error decoding batch input: %w", err)
	}
	if len(ep.Picks) == 0 {
		return nil, ErrNoPicks
	}
	if limit > 0 && len(ep.Picks) > limit {
		ep.Picks = ep.Picks[:limit]
	}
	return ep.Picks, nil
}

// EmitBatch writes the event parameters as one indented JSON document.
func EmitBatch(path string, ep originModel.EventParameters) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating batch output %s: %w", path, err)
	}
	if err := WriteBatch(file, ep); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing batch output %s: %w", path, err)
	}
	return nil
}

func WriteBatch(sink io.Writer, ep originModel.EventParameters) error {
	encoder := json.NewEncoder(sink)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(ep); err != nil {
		return fmt.Errorf("error encoding batch output: %w", err)
	}
	return nil
}

var (
	ErrNoPicks       = errors.New("no picks found in batch input")
	ErrUnknownFormat = errors.New("unknown batch input format")
)
