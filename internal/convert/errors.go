package convert

import (
	"errors"
	"fmt"
)

// Stages of the conversion pipeline, reported in ConversionError
const (
	StageMetadata  = "metadata"
	StageConvert   = "convert"
	StageRasterize = "rasterize"
	StageOutput    = "output"
)

// ErrNoOutput is wrapped when a pipeline step succeeds but leaves nothing behind
var ErrNoOutput = errors.New("no output produced")

// ConversionError reports a deck that could not be turned into images
type ConversionError struct {
	Deck  string
	Stage string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %s (%s): %v", e.Deck, e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}
