package chunk

import (
	"errors"
	"math/big"
	"testing"

	"github.com/scrollstateless/verifier/chainspec"
	"github.com/scrollstateless/verifier/core/state"
	"github.com/scrollstateless/verifier/core/types"
	"github.com/scrollstateless/verifier/executor"
	"github.com/scrollstateless/verifier/witness"
)

// emptyWitness returns a single-block witness over the canonical empty
// state trie, with the header's declared post-state root left to the
// caller (EmptyRootHash for a no-op block).
func emptyWitness(chainID uint64, number uint64, parentHash types.Hash, preRoot, postRoot types.Hash) *witness.Witness {
	header := &types.Header{
		ParentHash: parentHash,
		Number:     new(big.Int).SetUint64(number),
		Root:       postRoot,
		BaseFee:    new(big.Int),
		GasLimit:   30_000_000,
	}
	return &witness.Witness{
		ChainID:      chainID,
		Header:       header,
		PreStateRoot: preRoot,
	}
}

func TestDriverRunSingleEmptyBlock(t *testing.T) {
	w := emptyWitness(1, 1, types.Hash{}, types.EmptyRootHash, types.EmptyRootHash)
	driver := NewDriver(chainspec.Ethereum(1), &executor.Simple{})

	result, err := driver.Run([]*witness.Witness{w})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.PostStateRoot != types.EmptyRootHash {
		t.Fatalf("post state root = %s, want empty root", result.PostStateRoot.Hex())
	}
	if driver.Status() != Done {
		t.Fatalf("status = %d, want Done", driver.Status())
	}
}

func TestDriverRunEmptyChunkRejected(t *testing.T) {
	driver := NewDriver(chainspec.Ethereum(1), &executor.Simple{})
	_, err := driver.Run(nil)
	if !errors.Is(err, ErrEmptyChunk) {
		t.Fatalf("expected ErrEmptyChunk, got %v", err)
	}
}

func TestDriverRunChainIDMismatch(t *testing.T) {
	w1 := emptyWitness(1, 1, types.Hash{}, types.EmptyRootHash, types.EmptyRootHash)
	w2 := emptyWitness(2, 2, w1.Header.Hash(), types.EmptyRootHash, types.EmptyRootHash)

	driver := NewDriver(chainspec.Ethereum(1), &executor.Simple{})
	_, err := driver.Run([]*witness.Witness{w1, w2})

	var mismatch *ErrChainIDMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ErrChainIDMismatch, got %v", err)
	}
}

func TestDriverRunNonSequentialBlockNumber(t *testing.T) {
	w1 := emptyWitness(1, 1, types.Hash{}, types.EmptyRootHash, types.EmptyRootHash)
	w2 := emptyWitness(1, 3, w1.Header.Hash(), types.EmptyRootHash, types.EmptyRootHash)

	driver := NewDriver(chainspec.Ethereum(1), &executor.Simple{})
	_, err := driver.Run([]*witness.Witness{w1, w2})

	var mismatch *ErrNonSequentialBlockNumber
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ErrNonSequentialBlockNumber, got %v", err)
	}
}

func TestDriverRunParentHashMismatch(t *testing.T) {
	w1 := emptyWitness(1, 1, types.Hash{}, types.EmptyRootHash, types.EmptyRootHash)
	w2 := emptyWitness(1, 2, types.HexToHash("0xdead"), types.EmptyRootHash, types.EmptyRootHash)

	driver := NewDriver(chainspec.Ethereum(1), &executor.Simple{})
	_, err := driver.Run([]*witness.Witness{w1, w2})

	var mismatch *ErrParentHashMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ErrParentHashMismatch, got %v", err)
	}
}

func TestDriverRunNonSequentialStateRoot(t *testing.T) {
	w1 := emptyWitness(1, 1, types.Hash{}, types.EmptyRootHash, types.EmptyRootHash)
	w2 := emptyWitness(1, 2, w1.Header.Hash(), types.HexToHash("0xbeef"), types.EmptyRootHash)

	driver := NewDriver(chainspec.Ethereum(1), &executor.Simple{})
	_, err := driver.Run([]*witness.Witness{w1, w2})

	var mismatch *ErrNonSequentialStateRoot
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ErrNonSequentialStateRoot, got %v", err)
	}
}

func TestDriverRunBlockRootMismatch(t *testing.T) {
	w := emptyWitness(1, 1, types.Hash{}, types.EmptyRootHash, types.HexToHash("0xdeadbeef"))
	driver := NewDriver(chainspec.Ethereum(1), &executor.Simple{})

	_, err := driver.Run([]*witness.Witness{w})
	var mismatch *ErrBlockRootMismatch
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected ErrBlockRootMismatch, got %v", err)
	}
}

func TestDriverRunEuclidV2RequiresPrevMsgQueueHash(t *testing.T) {
	w := emptyWitness(534352, 1, types.Hash{}, types.EmptyRootHash, types.EmptyRootHash)
	driver := NewDriver(chainspec.ScrollL2(534352, true), &executor.Simple{})

	_, err := driver.Run([]*witness.Witness{w})
	if !errors.Is(err, ErrPrevMsgQueueHashRequired) {
		t.Fatalf("expected ErrPrevMsgQueueHashRequired, got %v", err)
	}
}

func TestDriverRunScrollRequiresL2MessageQueueWitness(t *testing.T) {
	// A Scroll chunk reads the withdraw root from the L2 message queue
	// predeploy after every block; an empty witness that never carries
	// that account must fail loudly rather than assume a zero root.
	w := emptyWitness(534352, 1, types.Hash{}, types.EmptyRootHash, types.EmptyRootHash)
	rules := chainspec.ScrollL2(534352, false)
	driver := NewDriver(rules, &executor.Simple{})

	_, err := driver.Run([]*witness.Witness{w})
	if !errors.Is(err, state.ErrMissingL2MessageQueueWitness) {
		t.Fatalf("expected ErrMissingL2MessageQueueWitness, got %v", err)
	}
}
