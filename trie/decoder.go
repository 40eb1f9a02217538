package trie

import (
	"fmt"
)

// decodeNode decodes a single RLP-encoded trie node. hash, when non-nil, is
// the node's own reference and is cached on the decoded node so a
// subsequent Hash() call does not need to re-encode an untouched subtree.
//
// A 2-element list dispatches on the decoded path's terminator bit to a
// leafNode or extensionNode. A 17-element list decodes as a branchNode;
// per spec.md §4.B a non-empty 17th element is a hard decode failure
// (ErrValueInBranch), never a silently-accepted value slot.
func decodeNode(hash hashNode, data []byte) (node, error) {
	if len(data) == 0 {
		return nil, ErrDecode
	}
	elems, err := decodeRLPList(data)
	if err != nil {
		return nil, fmt.Errorf("trie: decode node: %w", err)
	}
	switch len(elems) {
	case 2:
		return decodeShort(hash, elems)
	case 17:
		return decodeFull(hash, elems)
	default:
		return nil, fmt.Errorf("%w: expected 2 or 17 list elements, got %d", ErrDecode, len(elems))
	}
}

func decodeShort(hash hashNode, elems [][]byte) (node, error) {
	key, isLeaf := decodePath(elems[0])
	if isLeaf {
		return &leafNode{
			Key:   key,
			Val:   valueNode(elems[1]),
			flags: nodeFlag{hash: hash},
		}, nil
	}
	child, err := decodeRef(elems[1])
	if err != nil {
		return nil, err
	}
	return &extensionNode{
		Key:   key,
		Val:   child,
		flags: nodeFlag{hash: hash},
	}, nil
}

func decodeFull(hash hashNode, elems [][]byte) (node, error) {
	if len(elems[16]) > 0 {
		return nil, ErrValueInBranch
	}
	n := &branchNode{flags: nodeFlag{hash: hash}}
	for i := 0; i < 16; i++ {
		if len(elems[i]) == 0 {
			continue
		}
		child, err := decodeRef(elems[i])
		if err != nil {
			return nil, err
		}
		n.Children[i] = child
	}
	return n, nil
}

// decodeRef decodes a child reference: the empty string is Null (nil), a
// 32-byte string is a hashNode (Digest), anything else is an inline node
// decoded recursively.
func decodeRef(data []byte) (node, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) == 32 {
		return hashNode(data), nil
	}
	return decodeNode(nil, data)
}

func decodeLength(data []byte, lenLen int) int {
	var length int
	for i := 0; i < lenLen; i++ {
		length = length<<8 | int(data[i])
	}
	return length
}

// decodeRLPList decodes a top-level RLP list into its element byte slices
// (each slice is the element's raw payload for strings, or its full
// RLP encoding — header included — for nested list elements, so that
// inline child nodes can be re-decoded directly).
func decodeRLPList(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, ErrDecode
	}
	prefix := data[0]
	if prefix < 0xc0 {
		return nil, fmt.Errorf("%w: expected list, got string prefix 0x%02x", ErrDecode, prefix)
	}
	var payload []byte
	switch {
	case prefix <= 0xf7:
		length := int(prefix - 0xc0)
		if 1+length > len(data) {
			return nil, ErrDecode
		}
		payload = data[1 : 1+length]
	default:
		lenLen := int(prefix - 0xf7)
		if 1+lenLen > len(data) {
			return nil, ErrDecode
		}
		length := decodeLength(data[1:1+lenLen], lenLen)
		if 1+lenLen+length > len(data) {
			return nil, ErrDecode
		}
		payload = data[1+lenLen : 1+lenLen+length]
	}

	var elems [][]byte
	for len(payload) > 0 {
		elem, rest, err := decodeOneElement(payload)
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		payload = rest
	}
	return elems, nil
}

func decodeOneElement(data []byte) (content []byte, rest []byte, err error) {
	if len(data) == 0 {
		return nil, nil, ErrDecode
	}
	prefix := data[0]
	switch {
	case prefix <= 0x7f:
		return data[:1], data[1:], nil
	case prefix == 0x80:
		return nil, data[1:], nil
	case prefix <= 0xb7:
		length := int(prefix - 0x80)
		if 1+length > len(data) {
			return nil, nil, ErrDecode
		}
		return data[1 : 1+length], data[1+length:], nil
	case prefix <= 0xbf:
		lenLen := int(prefix - 0xb7)
		if 1+lenLen > len(data) {
			return nil, nil, ErrDecode
		}
		length := decodeLength(data[1:1+lenLen], lenLen)
		end := 1 + lenLen + length
		if end > len(data) {
			return nil, nil, ErrDecode
		}
		return data[1+lenLen : end], data[end:], nil
	case prefix <= 0xf7:
		length := int(prefix - 0xc0)
		end := 1 + length
		if end > len(data) {
			return nil, nil, ErrDecode
		}
		return data[:end], data[end:], nil
	default:
		lenLen := int(prefix - 0xf7)
		if 1+lenLen > len(data) {
			return nil, nil, ErrDecode
		}
		length := decodeLength(data[1:1+lenLen], lenLen)
		end := 1 + lenLen + length
		if end > len(data) {
			return nil, nil, ErrDecode
		}
		return data[:end], data[end:], nil
	}
}
