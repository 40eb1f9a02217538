// statedb.go adapts the teacher's StatelessStateDB (pkg/core/state/stateless.go)
// to read through the real partial trie of account_trie.go instead of a
// flat witness map, and adds the code-by-hash cache, ancestor block-hash
// lookups, and the L2 withdraw-root read of spec.md §4.E.
package state

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/scrollstateless/verifier/core/types"
	"github.com/scrollstateless/verifier/crypto"
)

// L2MessageQueueAddress is the fixed pre-deployed account whose storage
// slot 0 holds the L2 withdraw root (spec.md §4.E, §9, GLOSSARY).
var L2MessageQueueAddress = types.HexToAddress("0x5300000000000000000000000000000000000000")

// withdrawRootSlot is slot 0 of L2MessageQueueAddress.
var withdrawRootSlot = types.Hash{}

// StateReader is the read-only surface an executor consumes (spec.md
// §4.E): account info, code, storage, and ancestor block hashes.
type StateReader interface {
	Basic(addr types.Address) (*types.Account, []byte, error)
	CodeByHash(hash types.Hash) ([]byte, error)
	Storage(addr types.Address, slot types.Hash) (*uint256.Int, error)
	BlockHash(number uint64) (types.Hash, error)
}

// stateObject is the overlay copy of one account's state, lazily loaded
// from the partial trie on first touch.
type stateObject struct {
	account          types.Account
	exists           bool
	code             []byte
	dirtyStorage     map[types.Hash]*uint256.Int
	committedStorage map[types.Hash]*uint256.Int
	selfDestructed   bool
}

func newStateObject() *stateObject {
	return &stateObject{
		account:          *types.NewEmptyAccount(),
		dirtyStorage:     make(map[types.Hash]*uint256.Int),
		committedStorage: make(map[types.Hash]*uint256.Int),
	}
}

func (o *stateObject) deepCopy() *stateObject {
	cp := &stateObject{
		account:        *o.account.Copy(),
		exists:         o.exists,
		code:           append([]byte(nil), o.code...),
		selfDestructed: o.selfDestructed,
	}
	cp.dirtyStorage = make(map[types.Hash]*uint256.Int, len(o.dirtyStorage))
	for k, v := range o.dirtyStorage {
		cp.dirtyStorage[k] = new(uint256.Int).Set(v)
	}
	cp.committedStorage = make(map[types.Hash]*uint256.Int, len(o.committedStorage))
	for k, v := range o.committedStorage {
		cp.committedStorage[k] = new(uint256.Int).Set(v)
	}
	return cp
}

// StateDB is the witness-backed state database of spec.md §4.E: an EVM
// reads through it, and the chunk driver applies the executor's
// post-execution diff through Update/Commit.
type StateDB struct {
	trie        *PartialTrie
	codes       map[types.Hash][]byte // keccak(code) -> code, populated from the witness
	decodedCode map[types.Hash][]byte // code_by_hash decode-once cache
	blockHashes map[uint64]types.Hash // L1 variant only; nil for the L2 null provider

	accounts         map[types.Address]*stateObject
	logs             map[types.Hash][]*types.Log
	refund           uint64
	accessList       *accessList
	transientStorage map[types.Address]map[types.Hash]types.Hash

	txHash  types.Hash
	txIndex int

	snapshots  map[int]*stateSnapshot
	nextSnapID int
}

type stateSnapshot struct {
	accounts   map[types.Address]*stateObject
	refund     uint64
	logs       map[types.Hash][]*types.Log
	accessList *accessList
}

// NewStateDB constructs a StateDB over an already-resolved PartialTrie, the
// witness's code set, and (L1 variant only) its ancestor block-hash map. A
// nil blockHashes implements the L2 "null provider" of spec.md §9.
func NewStateDB(trie *PartialTrie, codes map[types.Hash][]byte, blockHashes map[uint64]types.Hash) *StateDB {
	return &StateDB{
		trie:             trie,
		codes:            codes,
		decodedCode:      make(map[types.Hash][]byte),
		blockHashes:      blockHashes,
		accounts:         make(map[types.Address]*stateObject),
		logs:             make(map[types.Hash][]*types.Log),
		accessList:       newAccessList(),
		transientStorage: make(map[types.Address]map[types.Hash]types.Hash),
		snapshots:        make(map[int]*stateSnapshot),
	}
}

// getOrLoadAccount returns the overlay object for addr, loading it from the
// partial trie on first touch. Loading never fails silently: a
// *trie.ErrNodeNotResolved from the underlying Get is returned to the
// caller instead of swallowed.
func (s *StateDB) getOrLoadAccount(addr types.Address) (*stateObject, error) {
	if obj, ok := s.accounts[addr]; ok {
		return obj, nil
	}
	obj := newStateObject()
	acct, err := s.trie.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acct != nil {
		obj.account = *acct
		obj.exists = true
		if code, ok := s.codes[types.BytesToHash(acct.CodeHash)]; ok {
			obj.code = code
		}
	}
	s.accounts[addr] = obj
	return obj, nil
}

// Basic returns addr's account info plus its code, loading both through the
// partial trie and the witness code set. A non-existent address returns a
// nil account and no error (spec.md §4.D: get_account yields Option<Account>).
func (s *StateDB) Basic(addr types.Address) (*types.Account, []byte, error) {
	obj, err := s.getOrLoadAccount(addr)
	if err != nil {
		return nil, nil, err
	}
	if !obj.exists {
		return nil, nil, nil
	}
	return obj.account.Copy(), obj.code, nil
}

// CodeByHash returns the decoded bytecode for hash, caching it after the
// first lookup. Returns *ErrCodeNotLoaded if the witness's code set does
// not contain it.
func (s *StateDB) CodeByHash(hash types.Hash) ([]byte, error) {
	if code, ok := s.decodedCode[hash]; ok {
		return code, nil
	}
	code, ok := s.codes[hash]
	if !ok {
		return nil, &ErrCodeNotLoaded{Hash: hash}
	}
	s.decodedCode[hash] = code
	return code, nil
}

// Storage returns the u256 value at (addr, slot).
func (s *StateDB) Storage(addr types.Address, slot types.Hash) (*uint256.Int, error) {
	return s.GetStateErr(addr, slot)
}

// BlockHash returns the ancestor hash for number, or
// *ErrBlockHashMissing if the L1 variant's witness window does not cover
// it, or unconditionally on the L2 variant's null provider.
func (s *StateDB) BlockHash(number uint64) (types.Hash, error) {
	if s.blockHashes == nil {
		return types.Hash{}, &ErrBlockHashMissing{Number: number}
	}
	h, ok := s.blockHashes[number]
	if !ok {
		return types.Hash{}, &ErrBlockHashMissing{Number: number}
	}
	return h, nil
}

// WithdrawRoot reads slot 0 of the L2 message-queue predeploy. Returns
// ErrMissingL2MessageQueueWitness if the account is not present in the
// witness.
func (s *StateDB) WithdrawRoot() (types.Hash, error) {
	obj, err := s.getOrLoadAccount(L2MessageQueueAddress)
	if err != nil {
		return types.Hash{}, err
	}
	if !obj.exists {
		return types.Hash{}, ErrMissingL2MessageQueueWitness
	}
	val, err := s.GetStateErr(L2MessageQueueAddress, withdrawRootSlot)
	if err != nil {
		return types.Hash{}, err
	}
	return types.BytesToHash(val.Bytes()), nil
}

// --- Account mutation surface, for an EVM plugged in via StateDB directly ---

func (s *StateDB) CreateAccount(addr types.Address) {
	obj := newStateObject()
	obj.exists = true
	s.accounts[addr] = obj
}

func (s *StateDB) mustLoad(addr types.Address) *stateObject {
	obj, err := s.getOrLoadAccount(addr)
	if err != nil {
		// Programmer error: callers of the mutation surface are expected
		// to have already satisfied reads through Basic/Storage, which
		// surface NodeNotResolved explicitly.
		panic(fmt.Sprintf("state: unresolved account %s touched via mutation surface: %v", addr.Hex(), err))
	}
	return obj
}

func (s *StateDB) SubBalance(addr types.Address, amount *uint256.Int) {
	obj := s.mustLoad(addr)
	obj.exists = true
	obj.account.Balance = new(uint256.Int).Sub(obj.account.Balance, amount)
}

func (s *StateDB) AddBalance(addr types.Address, amount *uint256.Int) {
	obj := s.mustLoad(addr)
	obj.exists = true
	obj.account.Balance = new(uint256.Int).Add(obj.account.Balance, amount)
}

func (s *StateDB) GetBalance(addr types.Address) *uint256.Int {
	obj := s.mustLoad(addr)
	return new(uint256.Int).Set(obj.account.Balance)
}

func (s *StateDB) GetNonce(addr types.Address) uint64 {
	return s.mustLoad(addr).account.Nonce
}

func (s *StateDB) SetNonce(addr types.Address, nonce uint64) {
	obj := s.mustLoad(addr)
	obj.exists = true
	obj.account.Nonce = nonce
}

func (s *StateDB) GetCode(addr types.Address) []byte { return s.mustLoad(addr).code }

func (s *StateDB) SetCode(addr types.Address, code []byte) {
	obj := s.mustLoad(addr)
	obj.exists = true
	obj.code = code
	obj.account.CodeHash = crypto.Keccak256(code)
}

func (s *StateDB) GetCodeHash(addr types.Address) types.Hash {
	return types.BytesToHash(s.mustLoad(addr).account.CodeHash)
}

func (s *StateDB) GetCodeSize(addr types.Address) int { return len(s.mustLoad(addr).code) }

func (s *StateDB) SelfDestruct(addr types.Address) {
	obj, err := s.getOrLoadAccount(addr)
	if err != nil || !obj.exists {
		return
	}
	obj.selfDestructed = true
	obj.account.Balance = new(uint256.Int)
}

func (s *StateDB) HasSelfDestructed(addr types.Address) bool {
	if obj, ok := s.accounts[addr]; ok {
		return obj.selfDestructed
	}
	return false
}

// GetStateErr is the error-returning counterpart of GetState, used by the
// StateReader contract where an unresolved Digest must propagate rather
// than panic.
func (s *StateDB) GetStateErr(addr types.Address, key types.Hash) (*uint256.Int, error) {
	obj, err := s.getOrLoadAccount(addr)
	if err != nil {
		return nil, err
	}
	if !obj.exists {
		return nil, &ErrMissingAccount{Address: addr}
	}
	if val, ok := obj.dirtyStorage[key]; ok {
		return new(uint256.Int).Set(val), nil
	}
	if val, ok := obj.committedStorage[key]; ok {
		return new(uint256.Int).Set(val), nil
	}
	val, err := s.trie.GetStorage(addr, key)
	if err != nil {
		var missing *ErrMissingAccount
		if errors.As(err, &missing) {
			return new(uint256.Int), nil
		}
		return nil, err
	}
	obj.committedStorage[key] = val
	return new(uint256.Int).Set(val), nil
}

func (s *StateDB) GetState(addr types.Address, key types.Hash) *uint256.Int {
	val, err := s.GetStateErr(addr, key)
	if err != nil {
		panic(fmt.Sprintf("state: unresolved storage %s/%s touched via mutation surface: %v", addr.Hex(), key.Hex(), err))
	}
	return val
}

func (s *StateDB) SetState(addr types.Address, key types.Hash, value *uint256.Int) {
	obj := s.mustLoad(addr)
	obj.dirtyStorage[key] = new(uint256.Int).Set(value)
}

func (s *StateDB) GetCommittedState(addr types.Address, key types.Hash) *uint256.Int {
	obj := s.mustLoad(addr)
	if val, ok := obj.committedStorage[key]; ok {
		return new(uint256.Int).Set(val)
	}
	return new(uint256.Int)
}

func (s *StateDB) Exist(addr types.Address) bool {
	if obj, ok := s.accounts[addr]; ok {
		return obj.exists && !obj.selfDestructed
	}
	acct, err := s.trie.GetAccount(addr)
	return err == nil && acct != nil
}

func (s *StateDB) Empty(addr types.Address) bool {
	obj := s.mustLoad(addr)
	if !obj.exists {
		return true
	}
	return obj.account.IsEmpty()
}

// --- Snapshot / revert, for an EVM's internal journal ---

func (s *StateDB) Snapshot() int {
	id := s.nextSnapID
	s.nextSnapID++

	accts := make(map[types.Address]*stateObject, len(s.accounts))
	for addr, obj := range s.accounts {
		accts[addr] = obj.deepCopy()
	}
	logs := make(map[types.Hash][]*types.Log, len(s.logs))
	for h, ls := range s.logs {
		logs[h] = append([]*types.Log(nil), ls...)
	}

	s.snapshots[id] = &stateSnapshot{
		accounts:   accts,
		refund:     s.refund,
		logs:       logs,
		accessList: s.accessList.Copy(),
	}
	return id
}

func (s *StateDB) RevertToSnapshot(id int) {
	snap, ok := s.snapshots[id]
	if !ok {
		return
	}
	s.accounts = snap.accounts
	s.refund = snap.refund
	s.logs = snap.logs
	s.accessList = snap.accessList

	for sid := range s.snapshots {
		if sid >= id {
			delete(s.snapshots, sid)
		}
	}
}

// --- Logs ---

func (s *StateDB) AddLog(log *types.Log) {
	log.TxHash = s.txHash
	log.TxIndex = uint(s.txIndex)
	s.logs[s.txHash] = append(s.logs[s.txHash], log)
}

func (s *StateDB) GetLogs(txHash types.Hash) []*types.Log { return s.logs[txHash] }

func (s *StateDB) SetTxContext(txHash types.Hash, txIndex int) {
	s.txHash = txHash
	s.txIndex = txIndex
}

// --- Refund counter ---

func (s *StateDB) AddRefund(gas uint64) { s.refund += gas }
func (s *StateDB) SubRefund(gas uint64) { s.refund -= gas }
func (s *StateDB) GetRefund() uint64    { return s.refund }

// --- Access list (EIP-2929) ---

func (s *StateDB) AddAddressToAccessList(addr types.Address) { s.accessList.AddAddress(addr) }
func (s *StateDB) AddSlotToAccessList(addr types.Address, slot types.Hash) {
	s.accessList.AddSlot(addr, slot)
}
func (s *StateDB) AddressInAccessList(addr types.Address) bool {
	return s.accessList.ContainsAddress(addr)
}
func (s *StateDB) SlotInAccessList(addr types.Address, slot types.Hash) (bool, bool) {
	return s.accessList.ContainsSlot(addr, slot)
}

// --- Transient storage (EIP-1153) ---

func (s *StateDB) GetTransientState(addr types.Address, key types.Hash) types.Hash {
	if slots, ok := s.transientStorage[addr]; ok {
		return slots[key]
	}
	return types.Hash{}
}

func (s *StateDB) SetTransientState(addr types.Address, key types.Hash, value types.Hash) {
	if _, ok := s.transientStorage[addr]; !ok {
		s.transientStorage[addr] = make(map[types.Hash]types.Hash)
	}
	s.transientStorage[addr][key] = value
}

// --- Commit: applies the overlay back into the partial trie ---

// Commit flushes every dirty storage slot and account into the partial
// trie, returning the new state root. Self-destructed and emptied
// accounts are removed entirely (spec.md §3).
func (s *StateDB) Commit() (types.Hash, error) {
	updates := make([]AccountUpdate, 0, len(s.accounts))
	for addr, obj := range s.accounts {
		for key, val := range obj.dirtyStorage {
			obj.committedStorage[key] = val
		}
		obj.dirtyStorage = make(map[types.Hash]*uint256.Int)

		if obj.selfDestructed || (obj.exists && obj.account.IsEmpty()) {
			updates = append(updates, AccountUpdate{Address: addr, Account: nil})
			continue
		}
		if !obj.exists {
			for _, v := range obj.committedStorage {
				if v != nil && !v.IsZero() {
					return types.Hash{}, &ErrInvalidStorageWrite{Address: addr}
				}
			}
			continue
		}
		deltas := make(map[types.Hash]*uint256.Int, len(obj.committedStorage))
		for k, v := range obj.committedStorage {
			deltas[k] = v
		}
		acct := obj.account.Copy()
		updates = append(updates, AccountUpdate{Address: addr, Account: acct, StorageDeltas: deltas})
	}
	if err := s.trie.Update(updates); err != nil {
		return types.Hash{}, err
	}
	return s.trie.CommitState(), nil
}
