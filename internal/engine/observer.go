// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import (
	"fmt"
	"io"

	"github.com/zhouzhang499-gif/LongTextAgent/pkg/types"
)

// Observer receives engine progress events. Injected instead of a
// global logger so front ends decide how (and whether) to render them.
type Observer interface {
	// RoundCompleted fires after each branch round's selection.
	RoundCompleted(round int, selected types.ScoredBranch, accepted bool)

	// ChunkAppended fires after each continuation iteration.
	ChunkAppended(iteration, chunkLength, totalLength int)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) RoundCompleted(int, types.ScoredBranch, bool) {}
func (NopObserver) ChunkAppended(int, int, int)                  {}

// WriterObserver prints progress lines to w.
type WriterObserver struct {
	W io.Writer
}

func (o WriterObserver) RoundCompleted(round int, selected types.ScoredBranch, accepted bool) {
	verdict := "rejected"
	if accepted {
		verdict = "accepted"
	}
	fmt.Fprintf(o.W, "round %d: branch %d scored %.1f (%s)\n",
		round+1, selected.Branch.ID, selected.Eval.Score, verdict)
}

func (o WriterObserver) ChunkAppended(iteration, chunkLength, totalLength int) {
	fmt.Fprintf(o.W, "continuation %d: +%d units (total %d)\n",
		iteration, chunkLength, totalLength)
}
