// Package executor glues a block and its recovered senders to the
// opaque EVM boundary of spec.md §4.G: build header+tx context, invoke
// the external interpreter, return gas used and a state diff in the
// schema of §3. The interpreter itself is explicitly out of scope; Simple
// below is a deterministic reference implementation (plain value
// transfers and EIP-4895 withdrawal credits) sufficient to drive the
// worked examples of spec.md §8, not a general-purpose EVM.
package executor

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/scrollstateless/verifier/chainspec"
	"github.com/scrollstateless/verifier/core/state"
	"github.com/scrollstateless/verifier/core/types"
	"github.com/scrollstateless/verifier/crypto"
)

// Output is the result of executing one block: gas consumed, the
// per-account state diff (schema of spec.md §3), and per-transaction
// receipts.
type Output struct {
	GasUsed   uint64
	StateDiff []state.AccountUpdate
	Receipts  []*Receipt
}

// Receipt is the minimal per-transaction execution record the chunk
// driver and callers can inspect; it is not itself part of the state
// root and carries no consensus weight in this verifier.
type Receipt struct {
	TxHash  types.Hash
	Status  uint64 // 1 success, 0 failure
	GasUsed uint64
	Logs    []*types.Log
}

// ErrExecutionFailed wraps a per-transaction failure with the hash of the
// offending transaction (spec.md §7: EvmExecutionFailed{tx_hash, source}).
type ErrExecutionFailed struct {
	TxHash types.Hash
	Err    error
}

func (e *ErrExecutionFailed) Error() string {
	return fmt.Sprintf("executor: tx %s failed: %v", e.TxHash.Hex(), e.Err)
}

func (e *ErrExecutionFailed) Unwrap() error { return e.Err }

// Executor is the opaque single-block EVM boundary of spec.md §4.G. It
// reads only through reader, and must be deterministic given an
// identical (rules, reader state, block) triple.
type Executor interface {
	Execute(rules chainspec.Rules, reader state.StateReader, block *types.Block) (*Output, error)
}

// weiPerGwei converts an EIP-4895 withdrawal amount (gwei) to wei.
var weiPerGwei = uint256.NewInt(1_000_000_000)

// Simple is a deterministic reference executor: plain value transfers
// charged at the transaction's declared gas limit, EIP-1559 fee
// splitting (base fee burned, priority fee to the coinbase), EIP-4895
// withdrawal credits, and a code presence check against the witness's
// code map for any transaction whose recipient carries code. It does
// not interpret bytecode.
type Simple struct{}

// workingAccount is the in-progress mutable copy of one touched account,
// seeded from the reader on first touch and flushed into an
// state.AccountUpdate at the end of the block.
type workingAccount struct {
	address types.Address
	account *types.Account
	existed bool
}

func (s *Simple) Execute(rules chainspec.Rules, reader state.StateReader, block *types.Block) (*Output, error) {
	touched := make(map[types.Address]*workingAccount)
	order := make([]types.Address, 0)

	load := func(addr types.Address) (*workingAccount, error) {
		if w, ok := touched[addr]; ok {
			return w, nil
		}
		acct, _, err := reader.Basic(addr)
		if err != nil {
			return nil, err
		}
		existed := acct != nil
		if acct == nil {
			acct = types.NewEmptyAccount()
		}
		w := &workingAccount{address: addr, account: acct, existed: existed}
		touched[addr] = w
		order = append(order, addr)
		return w, nil
	}

	header := block.Header()
	baseFee := new(uint256.Int)
	if header.BaseFee != nil {
		baseFee, _ = uint256.FromBig(header.BaseFee)
	}

	var gasUsed uint64
	receipts := make([]*Receipt, 0, len(block.Transactions()))

	for _, tx := range block.Transactions() {
		var sender types.Address
		if tx.IsL1Message() {
			if !rules.L1MessageEnabled {
				return nil, &ErrExecutionFailed{TxHash: tx.Hash(), Err: fmt.Errorf("executor: L1 message envelope not enabled for this chain profile")}
			}
			sender = tx.Inner().(*types.L1MessageTx).Sender
		} else {
			addr, err := crypto.Sender(tx)
			if err != nil {
				return nil, &ErrExecutionFailed{TxHash: tx.Hash(), Err: err}
			}
			sender = addr
		}

		from, err := load(sender)
		if err != nil {
			return nil, &ErrExecutionFailed{TxHash: tx.Hash(), Err: err}
		}

		gasPrice, priorityFee := effectiveGasPrice(tx, baseFee)
		gasCost := new(uint256.Int).Mul(uint256.NewInt(tx.Gas()), gasPrice)
		value := tx.Value()
		if value == nil {
			value = new(uint256.Int)
		}

		if !tx.IsL1Message() {
			total := new(uint256.Int).Add(gasCost, value)
			if from.account.Balance.Lt(total) {
				return nil, &ErrExecutionFailed{TxHash: tx.Hash(), Err: fmt.Errorf("insufficient balance for sender %s", sender.Hex())}
			}
			if from.account.Nonce != tx.Nonce() {
				return nil, &ErrExecutionFailed{TxHash: tx.Hash(), Err: fmt.Errorf("nonce mismatch for sender %s: have %d want %d", sender.Hex(), from.account.Nonce, tx.Nonce())}
			}
			from.account.Balance = new(uint256.Int).Sub(from.account.Balance, total)
			from.account.Nonce++
		}
		from.existed = true

		if to := tx.To(); to != nil {
			toAcct, err := load(*to)
			if err != nil {
				return nil, &ErrExecutionFailed{TxHash: tx.Hash(), Err: err}
			}
			if toAcct.existed && types.BytesToHash(toAcct.account.CodeHash) != types.EmptyCodeHash {
				if _, err := reader.CodeByHash(types.BytesToHash(toAcct.account.CodeHash)); err != nil {
					return nil, &ErrExecutionFailed{TxHash: tx.Hash(), Err: err}
				}
			}
			toAcct.account.Balance = new(uint256.Int).Add(toAcct.account.Balance, value)
			toAcct.existed = true
		}

		if !priorityFee.IsZero() {
			coinbase, err := load(header.Coinbase)
			if err != nil {
				return nil, &ErrExecutionFailed{TxHash: tx.Hash(), Err: err}
			}
			fee := new(uint256.Int).Mul(uint256.NewInt(tx.Gas()), priorityFee)
			coinbase.account.Balance = new(uint256.Int).Add(coinbase.account.Balance, fee)
			coinbase.existed = true
		}

		gasUsed += tx.Gas()
		receipts = append(receipts, &Receipt{TxHash: tx.Hash(), Status: 1, GasUsed: tx.Gas()})
	}

	for _, w := range block.Withdrawals() {
		acct, err := load(w.Address)
		if err != nil {
			return nil, err
		}
		amount := new(uint256.Int).Mul(uint256.NewInt(w.Amount), weiPerGwei)
		acct.account.Balance = new(uint256.Int).Add(acct.account.Balance, amount)
		acct.existed = true
	}

	diffs := make([]state.AccountUpdate, 0, len(order))
	for _, addr := range order {
		w := touched[addr]
		if !w.existed || w.account.IsEmpty() {
			if w.existed {
				diffs = append(diffs, state.AccountUpdate{Address: addr, Account: nil})
			}
			continue
		}
		diffs = append(diffs, state.AccountUpdate{Address: addr, Account: w.account})
	}

	return &Output{GasUsed: gasUsed, StateDiff: diffs, Receipts: receipts}, nil
}

// effectiveGasPrice returns the price actually paid per unit gas and the
// portion of it that goes to the coinbase (base fee is burned for
// 1559-and-later envelopes, fully credited to the coinbase for
// legacy/2930 ones).
func effectiveGasPrice(tx *types.Transaction, baseFee *uint256.Int) (gasPrice, priorityFee *uint256.Int) {
	switch tx.Type() {
	case types.LegacyTxType, types.AccessListTxType:
		price := tx.GasFeeCap()
		if price == nil {
			price = new(uint256.Int)
		}
		return new(uint256.Int).Set(price), new(uint256.Int).Set(price)
	case types.L1MessageTxType:
		return new(uint256.Int), new(uint256.Int)
	default:
		tip := tx.GasTipCap()
		feeCap := tx.GasFeeCap()
		if tip == nil {
			tip = new(uint256.Int)
		}
		if feeCap == nil {
			feeCap = new(uint256.Int)
		}
		avail := new(uint256.Int)
		if feeCap.Gt(baseFee) {
			avail = new(uint256.Int).Sub(feeCap, baseFee)
		}
		actualTip := tip
		if avail.Lt(tip) {
			actualTip = avail
		}
		price := new(uint256.Int).Add(baseFee, actualTip)
		return price, new(uint256.Int).Set(actualTip)
	}
}
