package raw

import (
	"github.com/spyglass-sec/spyglass/internal/work"
)

// Queue tiers for the raw units. Lower runs first: the flag scanner is
// cheap and conclusive, so it always beats the decoders to a target.
const (
	PriorityFlagScan = 10
	PriorityHex      = 50
	PriorityROT13    = 55
	PriorityBase64   = 60
	PriorityBase85   = 60
)

// minDecodeLen filters out trivially short content: two or three
// characters decode under almost any codec and produce junk recursion.
const minDecodeLen = 8

// emit routes decoded output the way every decoder in this package
// does: printable output is reported and recursed on inline; binary
// output is reported, written through the artifact sink, and recursed
// on by path.
func emit(eng work.Engine, c *work.Case, name string, decoded []byte) error {
	eng.AddResult(c, decoded)

	if work.IsPrintable(decoded) {
		_, err := eng.Recurse(c, work.BytesSource(decoded))
		return err
	}

	path, w, err := eng.CreateArtifact(c, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(decoded); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	_, err = eng.Recurse(c, work.FileSource(path))
	return err
}
