package lhdiff

import (
	"errors"
	"fmt"
	"log"
	"os"
)

// ErrEmptyOldSide and ErrEmptyNewSide are not returned by the core itself —
// per the failure semantics in spec.md §4.4.6, an empty side simply yields
// an empty Mapping without error — but are exposed as sentinels so callers
// that want to distinguish "nothing to compare" from "compared and found
// nothing in common" don't have to re-derive the check from Len().
var (
	ErrEmptyOldSide = errors.New("lhdiff: old side has no lines")
	ErrEmptyNewSide = errors.New("lhdiff: new side has no lines")
)

// ErrMalformedInput wraps an I/O failure encountered while reading a
// LineSide from a Reader. The matching pipeline itself never returns an
// error; this exists for the boundary concern spec.md §7 carves out
// explicitly (I/O failure is surfaced by the Normalizer's caller).
var ErrMalformedInput = errors.New("lhdiff: failed to read input")

// wrapReadErr wraps err with ErrMalformedInput context, or returns nil if
// err is nil.
func wrapReadErr(err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %v", ErrMalformedInput, err) //nolint:errorlint // intentional: %v, sentinel conveyed via %w
}

// advisoryLogger is where one-time advisories (such as the TF-IDF
// empty-vocabulary case) are written. It is unexported, so only code
// inside this package can redirect or silence it by reassigning it; it
// defaults to stderr, unprefixed beyond the
// package tag, mirroring the teacher's direct fmt.Fprintf-to-stderr style
// for operational notices rather than pulling in a structured logging
// dependency no example in the retrieval pack uses for a library this
// size.
var advisoryLogger = log.New(os.Stderr, "lhdiff: ", 0)
