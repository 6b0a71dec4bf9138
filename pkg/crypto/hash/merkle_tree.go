package hash

import (
	"errors"

	"github.com/n3ledger/core/pkg/util"
)

// MerkleTreeNode represents a node in the Merkle tree.
type MerkleTreeNode struct {
	hash        util.Uint256
	parent      *MerkleTreeNode
	leftChild   *MerkleTreeNode
	rightChild  *MerkleTreeNode
}

// Hash returns the hash of the node.
func (n MerkleTreeNode) Hash() util.Uint256 {
	return n.hash
}

// IsLeaf returns whether this node is a leaf.
func (n MerkleTreeNode) IsLeaf() bool {
	return n.leftChild == nil && n.rightChild == nil
}

// IsRoot returns whether this node is a root.
func (n MerkleTreeNode) IsRoot() bool {
	return n.parent == nil
}

// MerkleTree represents a Merkle tree over Uint256 leaves.
type MerkleTree struct {
	root  *MerkleTreeNode
	depth int
}

// NewMerkleTree returns a new MerkleTree built from the given hashes.
// spec.md §4.2/§8: empty input is an error for the tree constructor (use
// CalcMerkleRoot for the "empty yields the zero hash" convenience path).
func NewMerkleTree(hashes []util.Uint256) (*MerkleTree, error) {
	if len(hashes) == 0 {
		return nil, errors.New("hashes must not be empty")
	}

	nodes := make([]*MerkleTreeNode, len(hashes))
	for i, hh := range hashes {
		nodes[i] = &MerkleTreeNode{hash: hh}
	}

	root := buildMerkleTree(nodes)
	var depth int
	for tmp := root; tmp != nil; tmp = tmp.leftChild {
		depth++
		if tmp.leftChild == nil {
			break
		}
	}

	return &MerkleTree{
		root:  root,
		depth: depth,
	}, nil
}

// buildMerkleTree recursively builds a tree over leaves, duplicating the
// last odd leaf at each level (Bitcoin-style, spec.md §4.2).
func buildMerkleTree(leaves []*MerkleTreeNode) *MerkleTreeNode {
	if len(leaves) == 0 {
		panic("length of the leaves must be greater than 0")
	}
	if len(leaves) == 1 {
		return leaves[0]
	}

	parents := make([]*MerkleTreeNode, (len(leaves)+1)/2)
	for i := range parents {
		parents[i] = &MerkleTreeNode{}
	}

	for i := 0; i < len(parents); i++ {
		parents[i].leftChild = leaves[i*2]
		leaves[i*2].parent = parents[i]

		if i*2+1 == len(leaves) {
			parents[i].rightChild = leaves[i*2]
		} else {
			parents[i].rightChild = leaves[i*2+1]
			leaves[i*2+1].parent = parents[i]
		}

		b1 := parents[i].leftChild.hash.BytesBE()
		b2 := parents[i].rightChild.hash.BytesBE()
		b1 = append(b1, b2...)
		parents[i].hash = DoubleSha256(b1)
	}

	return buildMerkleTree(parents)
}

// Root returns the computed root hash of the tree.
func (t *MerkleTree) Root() util.Uint256 {
	return t.root.hash
}

// CalcMerkleRoot computes the Merkle root directly, without building the
// full tree structure. An empty slice yields the zero hash per spec.md §8.
func CalcMerkleRoot(hashes []util.Uint256) util.Uint256 {
	if len(hashes) == 0 {
		return util.Uint256{}
	}
	if len(hashes) == 1 {
		return hashes[0]
	}

	level := make([]util.Uint256, len(hashes))
	copy(level, hashes)

	for len(level) > 1 {
		next := make([]util.Uint256, (len(level)+1)/2)
		for i := range next {
			left := level[i*2]
			var right util.Uint256
			if i*2+1 == len(level) {
				right = left
			} else {
				right = level[i*2+1]
			}
			b := append(left.BytesBE(), right.BytesBE()...)
			next[i] = DoubleSha256(b)
		}
		level = next
	}
	return level[0]
}
