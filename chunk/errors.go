package chunk

import (
	"fmt"

	"github.com/scrollstateless/verifier/core/types"
)

// Sequence-validation errors (spec.md §4.H, §7) — checked before any
// block in the chunk executes.
var (
	ErrEmptyChunk = chunkErr("chunk: empty chunk")
)

type chunkErr string

func (e chunkErr) Error() string { return string(e) }

// ErrChainIDMismatch is returned when not every witness in the chunk
// shares the same chain id.
type ErrChainIDMismatch struct {
	Index    int
	Expected uint64
	Actual   uint64
}

func (e *ErrChainIDMismatch) Error() string {
	return fmt.Sprintf("chunk: witness %d chain id %d, want %d", e.Index, e.Actual, e.Expected)
}

// ErrNonSequentialBlockNumber is returned when block numbers are not
// strictly +1 consecutive.
type ErrNonSequentialBlockNumber struct {
	Index    int
	Expected uint64
	Actual   uint64
}

func (e *ErrNonSequentialBlockNumber) Error() string {
	return fmt.Sprintf("chunk: witness %d block number %d, want %d", e.Index, e.Actual, e.Expected)
}

// ErrNonSequentialStateRoot is returned when witness[i+1].pre_state_root
// does not equal witness[i].header.state_root.
type ErrNonSequentialStateRoot struct {
	Index    int
	Expected types.Hash
	Actual   types.Hash
}

func (e *ErrNonSequentialStateRoot) Error() string {
	return fmt.Sprintf("chunk: witness %d pre-state root %s, want %s", e.Index, e.Actual.Hex(), e.Expected.Hex())
}

// ErrParentHashMismatch is returned when witness[i+1].parent_hash does
// not equal keccak256(rlp(witness[i].header)).
type ErrParentHashMismatch struct {
	Index    int
	Expected types.Hash
	Actual   types.Hash
}

func (e *ErrParentHashMismatch) Error() string {
	return fmt.Sprintf("chunk: witness %d parent hash %s, want %s", e.Index, e.Actual.Hex(), e.Expected.Hex())
}

// ErrBlockRootMismatch is returned when a block's post-execution trie
// root does not match its header's declared state root.
type ErrBlockRootMismatch struct {
	Index    int
	Expected types.Hash
	Actual   types.Hash
}

func (e *ErrBlockRootMismatch) Error() string {
	return fmt.Sprintf("chunk: block %d root mismatch: header declares %s, computed %s", e.Index, e.Expected.Hex(), e.Actual.Hex())
}

// ErrChunkRootMismatch is the final redundant check after the last block.
type ErrChunkRootMismatch struct {
	Expected types.Hash
	Actual   types.Hash
}

func (e *ErrChunkRootMismatch) Error() string {
	return fmt.Sprintf("chunk: final root mismatch: header declares %s, computed %s", e.Expected.Hex(), e.Actual.Hex())
}

// ErrPrevMsgQueueHashRequired is returned at chunk-construction time if
// the EuclidV2 pipeline is selected without a PrevMsgQueueHash configured
// (SPEC_FULL.md §5, supplemented from original_source/'s chunk builder).
var ErrPrevMsgQueueHashRequired = chunkErr("chunk: EuclidV2 pipeline requires PrevMsgQueueHash to be set before execution")
