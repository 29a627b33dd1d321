package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/BigDonalds/lhdiff-go"
)

// cmdOptions holds command line options.
type cmdOptions struct {
	// showUnmatched indicates whether deletions and insertions should be
	// printed in addition to matches.
	showUnmatched bool

	diffOpts lhdiff.Options
}

func main() {
	opts, err := options()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	args := flag.Args()
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: lhdiff [flags] <old-file> <new-file>")
		os.Exit(2)
	}

	if err := run(args[0], args[1], opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// options parses and returns the command line options.
func options() (cmdOptions, error) {
	showUnmatched := true
	removeComments := true
	lowercase := false

	flag.BoolVar(&showUnmatched, "showUnmatched", showUnmatched, "print deletions and insertions")
	flag.BoolVar(&removeComments, "removeComments", removeComments, "strip comments before comparing")
	flag.BoolVar(&lowercase, "lowercase", lowercase, "fold normalized text to lowercase")

	flag.Parse()

	return cmdOptions{
		showUnmatched: showUnmatched,
		diffOpts: lhdiff.Options{
			RemoveComments: removeComments,
			Lowercase:      lowercase,
		},
	}, nil
}

func run(oldPath, newPath string, opts cmdOptions) error {
	oldSide, err := readSide(oldPath, opts.diffOpts)
	if err != nil {
		return fmt.Errorf("read %s: %w", oldPath, err)
	}

	newSide, err := readSide(newPath, opts.diffOpts)
	if err != nil {
		return fmt.Errorf("read %s: %w", newPath, err)
	}

	candidates := lhdiff.BuildCandidates(oldSide.Normalized(), newSide.Normalized(), lhdiff.DefaultCandidateK)

	m := lhdiff.NewMatcher()

	matches := m.Match(oldSide, newSide, candidates, lhdiff.DefaultThreshold)
	matches = m.ResolveConflicts(matches, oldSide, newSide)
	matches = m.DetectReorders(oldSide, newSide, matches, lhdiff.DefaultReorderThreshold)
	mapping := m.DetectSplits(oldSide, newSide, matches, lhdiff.DefaultSplitThresholdIncrease)

	printMapping(mapping, oldSide, newSide, opts)

	return nil
}

func readSide(path string, opts lhdiff.Options) (lhdiff.LineSide, error) {
	f, err := os.Open(path)
	if err != nil {
		return lhdiff.LineSide{}, err
	}
	defer f.Close()

	return lhdiff.NewLineSideFromReader(f, opts)
}

// printMapping reports every old line's destination, followed by
// deletions and insertions when requested.
func printMapping(mapping lhdiff.Mapping, oldSide, newSide lhdiff.LineSide, opts cmdOptions) {
	var oldIdxs []int
	for idx := range mapping {
		oldIdxs = append(oldIdxs, idx)
	}

	sort.Ints(oldIdxs)

	for _, oldIdx := range oldIdxs {
		news := mapping[oldIdx]

		if len(news) == 1 {
			fmt.Printf("%d -> %d: %s\n", oldIdx+1, news[0]+1, oldSide.Line(oldIdx).Raw)
		} else {
			fmt.Printf("%d -> split across %v: %s\n", oldIdx+1, incrementAll(news), oldSide.Line(oldIdx).Raw)
		}
	}

	if !opts.showUnmatched {
		return
	}

	for _, oldIdx := range mapping.Deletions(oldSide.Len()) {
		fmt.Printf("%d -> (deleted): %s\n", oldIdx+1, oldSide.Line(oldIdx).Raw)
	}

	for _, newIdx := range mapping.Insertions(newSide.Len()) {
		fmt.Printf("(inserted) -> %d: %s\n", newIdx+1, newSide.Line(newIdx).Raw)
	}
}

// incrementAll returns idxs with every element shifted from 0-based to
// 1-based for display.
func incrementAll(idxs []int) []int {
	out := make([]int, len(idxs))
	for i, v := range idxs {
		out[i] = v + 1
	}

	return out
}
