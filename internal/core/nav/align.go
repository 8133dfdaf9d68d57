package nav

import "github.com/revtui/revtui/internal/core/model"

// Pair is one row of the two-column layout. A context line appears in
// both columns; a deletion pairs with the addition at the same offset in
// the following addition run; the longer run's excess renders against a
// blank column on the other side.
type Pair struct {
	Left  *model.DiffLine // old side: deletions and context
	Right *model.DiffLine // new side: additions and context
}

// AlignHunk groups a hunk's line sequence into column-paired rows.
//
// The pairing is positional, not content-similarity based: deletion i of a
// run lines up with addition i of the run that immediately follows it, and
// no attempt is made to detect which deletion "corresponds to" which
// addition.
func AlignHunk(hunk *model.DiffHunk) []Pair {
	lines := hunk.Lines
	pairs := make([]Pair, 0, len(lines))

	i := 0
	for i < len(lines) {
		switch lines[i].Origin {
		case model.OriginContext:
			pairs = append(pairs, Pair{Left: &lines[i], Right: &lines[i]})
			i++

		case model.OriginDeletion:
			delStart := i
			for i < len(lines) && lines[i].Origin == model.OriginDeletion {
				i++
			}
			addStart := i
			for i < len(lines) && lines[i].Origin == model.OriginAddition {
				i++
			}

			delCount := addStart - delStart
			addCount := i - addStart
			rows := max(delCount, addCount)

			for offset := 0; offset < rows; offset++ {
				var p Pair
				if offset < delCount {
					p.Left = &lines[delStart+offset]
				}
				if offset < addCount {
					p.Right = &lines[addStart+offset]
				}
				pairs = append(pairs, p)
			}

		case model.OriginAddition:
			// standalone addition, no preceding deletion run
			pairs = append(pairs, Pair{Right: &lines[i]})
			i++
		}
	}

	return pairs
}
