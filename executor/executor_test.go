package executor

import (
	"errors"
	"math/big"
	"testing"

	"github.com/holiman/uint256"

	"github.com/scrollstateless/verifier/chainspec"
	"github.com/scrollstateless/verifier/core/state"
	"github.com/scrollstateless/verifier/core/types"
)

// fakeReader is a minimal in-memory state.StateReader for executor tests.
type fakeReader struct {
	accounts map[types.Address]*types.Account
	codes    map[types.Hash][]byte
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		accounts: make(map[types.Address]*types.Account),
		codes:    make(map[types.Hash][]byte),
	}
}

func (f *fakeReader) Basic(addr types.Address) (*types.Account, []byte, error) {
	acct, ok := f.accounts[addr]
	if !ok {
		return nil, nil, nil
	}
	return acct.Copy(), f.codes[types.BytesToHash(acct.CodeHash)], nil
}

func (f *fakeReader) CodeByHash(hash types.Hash) ([]byte, error) {
	code, ok := f.codes[hash]
	if !ok {
		return nil, &state.ErrCodeNotLoaded{Hash: hash}
	}
	return code, nil
}

func (f *fakeReader) Storage(types.Address, types.Hash) (*uint256.Int, error) {
	return new(uint256.Int), nil
}

func (f *fakeReader) BlockHash(number uint64) (types.Hash, error) {
	return types.Hash{}, &state.ErrBlockHashMissing{Number: number}
}

var (
	sender    = types.HexToAddress("0x1111111111111111111111111111111111111111")
	recipient = types.HexToAddress("0x2222222222222222222222222222222222222222")
	coinbase  = types.HexToAddress("0x3333333333333333333333333333333333333333")
)

func signedDynamicFeeTx(nonce uint64, to types.Address, value, feeCap, tipCap uint64) *types.Transaction {
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   1,
		Nonce:     nonce,
		GasTipCap: uint256.NewInt(tipCap),
		GasFeeCap: uint256.NewInt(feeCap),
		Gas:       21000,
		To:        &to,
		Value:     uint256.NewInt(value),
	})
	tx.SetSender(sender)
	return tx
}

func testHeader(baseFee uint64) *types.Header {
	return &types.Header{
		Number:   big.NewInt(1),
		Coinbase: coinbase,
		BaseFee:  new(big.Int).SetUint64(baseFee),
	}
}

func TestSimpleExecuteTransfer(t *testing.T) {
	reader := newFakeReader()
	reader.accounts[sender] = &types.Account{Balance: uint256.NewInt(10_000_000), CodeHash: types.EmptyCodeHash.Bytes()}

	tx := signedDynamicFeeTx(0, recipient, 1000, 100, 10)
	block := types.NewBlock(testHeader(50), &types.Body{Transactions: []*types.Transaction{tx}})

	out, err := (&Simple{}).Execute(chainspec.Ethereum(1), reader, block)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out.GasUsed != 21000 {
		t.Fatalf("gas used = %d, want 21000", out.GasUsed)
	}

	var senderDiff, recipientDiff, coinbaseDiff *state.AccountUpdate
	for i := range out.StateDiff {
		switch out.StateDiff[i].Address {
		case sender:
			senderDiff = &out.StateDiff[i]
		case recipient:
			recipientDiff = &out.StateDiff[i]
		case coinbase:
			coinbaseDiff = &out.StateDiff[i]
		}
	}
	if senderDiff == nil || recipientDiff == nil || coinbaseDiff == nil {
		t.Fatalf("missing expected account diffs: %+v", out.StateDiff)
	}

	// gas cost = 21000 * min(tip=10, feeCap-baseFee=50) -> effective price = baseFee+10 = 60
	wantSenderBalance := uint256.NewInt(10_000_000)
	wantSenderBalance.Sub(wantSenderBalance, uint256.NewInt(21000*60))
	wantSenderBalance.Sub(wantSenderBalance, uint256.NewInt(1000))
	if !senderDiff.Account.Balance.Eq(wantSenderBalance) {
		t.Fatalf("sender balance = %s, want %s", senderDiff.Account.Balance, wantSenderBalance)
	}
	if !recipientDiff.Account.Balance.Eq(uint256.NewInt(1000)) {
		t.Fatalf("recipient balance = %s, want 1000", recipientDiff.Account.Balance)
	}
	if !coinbaseDiff.Account.Balance.Eq(uint256.NewInt(21000 * 10)) {
		t.Fatalf("coinbase balance = %s, want %d", coinbaseDiff.Account.Balance, 21000*10)
	}
}

func TestSimpleExecuteInsufficientBalance(t *testing.T) {
	reader := newFakeReader()
	reader.accounts[sender] = &types.Account{Balance: uint256.NewInt(1), CodeHash: types.EmptyCodeHash.Bytes()}

	tx := signedDynamicFeeTx(0, recipient, 1000, 100, 10)
	block := types.NewBlock(testHeader(50), &types.Body{Transactions: []*types.Transaction{tx}})

	_, err := (&Simple{}).Execute(chainspec.Ethereum(1), reader, block)
	var execErr *ErrExecutionFailed
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ErrExecutionFailed, got %v", err)
	}
}

func TestSimpleExecuteNonceMismatch(t *testing.T) {
	reader := newFakeReader()
	reader.accounts[sender] = &types.Account{Balance: uint256.NewInt(1_000_000), Nonce: 5, CodeHash: types.EmptyCodeHash.Bytes()}

	tx := signedDynamicFeeTx(0, recipient, 0, 100, 10)
	block := types.NewBlock(testHeader(0), &types.Body{Transactions: []*types.Transaction{tx}})

	_, err := (&Simple{}).Execute(chainspec.Ethereum(1), reader, block)
	var execErr *ErrExecutionFailed
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ErrExecutionFailed, got %v", err)
	}
}

func TestSimpleExecuteCodeNotLoaded(t *testing.T) {
	reader := newFakeReader()
	reader.accounts[sender] = &types.Account{Balance: uint256.NewInt(1_000_000), CodeHash: types.EmptyCodeHash.Bytes()}
	reader.accounts[recipient] = &types.Account{Balance: new(uint256.Int), CodeHash: types.HexToHash("0xbeef").Bytes()}

	tx := signedDynamicFeeTx(0, recipient, 1, 100, 10)
	block := types.NewBlock(testHeader(0), &types.Body{Transactions: []*types.Transaction{tx}})

	_, err := (&Simple{}).Execute(chainspec.Ethereum(1), reader, block)
	var execErr *ErrExecutionFailed
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ErrExecutionFailed wrapping CodeNotLoaded, got %v", err)
	}
	var notLoaded *state.ErrCodeNotLoaded
	if !errors.As(err, &notLoaded) {
		t.Fatalf("expected underlying ErrCodeNotLoaded, got %v", execErr.Err)
	}
}

func TestSimpleExecuteL1MessageFreeOfCharge(t *testing.T) {
	reader := newFakeReader()
	l1Sender := types.HexToAddress("0x4444444444444444444444444444444444444444")
	reader.accounts[l1Sender] = &types.Account{CodeHash: types.EmptyCodeHash.Bytes()}

	tx := types.NewTx(&types.L1MessageTx{
		QueueIndex: 0,
		Gas:        21000,
		To:         &recipient,
		Value:      uint256.NewInt(500),
		Sender:     l1Sender,
	})
	tx.SetSender(l1Sender)

	block := types.NewBlock(testHeader(0), &types.Body{Transactions: []*types.Transaction{tx}})

	rules := chainspec.ScrollL2(534352, false)
	out, err := (&Simple{}).Execute(rules, reader, block)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	for _, d := range out.StateDiff {
		if d.Address == l1Sender && d.Account != nil && !d.Account.Balance.IsZero() {
			t.Fatalf("L1 message sender was charged gas: balance %s", d.Account.Balance)
		}
	}
}

func TestSimpleExecuteL1MessageRejectedWithoutRules(t *testing.T) {
	reader := newFakeReader()
	l1Sender := types.HexToAddress("0x4444444444444444444444444444444444444444")
	tx := types.NewTx(&types.L1MessageTx{QueueIndex: 0, Gas: 21000, To: &recipient, Value: new(uint256.Int), Sender: l1Sender})
	tx.SetSender(l1Sender)
	block := types.NewBlock(testHeader(0), &types.Body{Transactions: []*types.Transaction{tx}})

	_, err := (&Simple{}).Execute(chainspec.Ethereum(1), reader, block)
	if err == nil {
		t.Fatal("expected an error when L1 messages are not enabled for the chain profile")
	}
}

func TestSimpleExecuteWithdrawalCredit(t *testing.T) {
	reader := newFakeReader()
	validator := types.HexToAddress("0x5555555555555555555555555555555555555555")

	block := types.NewBlock(testHeader(0), &types.Body{
		Withdrawals: []*types.Withdrawal{{Index: 0, ValidatorIndex: 1, Address: validator, Amount: 3}},
	})

	out, err := (&Simple{}).Execute(chainspec.Ethereum(1), reader, block)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(out.StateDiff) != 1 {
		t.Fatalf("state diff = %+v, want one entry", out.StateDiff)
	}
	want := new(uint256.Int).Mul(uint256.NewInt(3), weiPerGwei)
	if !out.StateDiff[0].Account.Balance.Eq(want) {
		t.Fatalf("validator balance = %s, want %s", out.StateDiff[0].Account.Balance, want)
	}
}
