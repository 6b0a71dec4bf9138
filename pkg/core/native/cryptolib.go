package native

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/core/native/nativenames"
	"github.com/n3ledger/core/pkg/crypto/hash"
	"github.com/n3ledger/core/pkg/crypto/keys"
	"github.com/n3ledger/core/pkg/smartcontract"
	"github.com/n3ledger/core/pkg/smartcontract/callflag"
	"github.com/n3ledger/core/pkg/smartcontract/manifest"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
	"github.com/twmb/murmur3"
	"golang.org/x/crypto/sha3"
)

// NamedCurveHash identifies the elliptic curve and hash combination
// CryptoLib.verifyWithECDsa checks a signature against, the same encoding
// the reference client's CryptoLib.NamedCurveHash enum uses.
type NamedCurveHash byte

// Supported curve/hash pairs; secp256r1 is the curve this chain's own
// witness verification scripts use, secp256k1 is exposed for interop with
// externally produced (e.g. Bitcoin/Ethereum-style) signatures.
const (
	Secp256k1Sha256    NamedCurveHash = 22
	Secp256r1Sha256    NamedCurveHash = 23
	Secp256k1Keccak256 NamedCurveHash = 24
	Secp256r1Keccak256 NamedCurveHash = 25
)

// ErrUnsupportedCurveHash is returned by verifyWithECDsa for a curve/hash
// combination this implementation does not carry.
var ErrUnsupportedCurveHash = errors.New("unsupported curve/hash combination")

// HashFunc is a message digest function returning a 32-byte hash, the
// shape both hash.Sha256 and Keccak256 share.
type HashFunc func([]byte) util.Uint256

// Keccak256 computes the Keccak-256 digest of data (the pre-standardization
// variant Ethereum uses, distinct from NIST SHA3-256).
func Keccak256(data []byte) util.Uint256 {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var u util.Uint256
	copy(u[:], h.Sum(nil))
	return u
}

// CryptoLib implements the CryptoLib native contract: the hashing,
// signature-verification and BLS12-381 pairing primitives scripts can't
// reach any other way, since the VM itself has no opcodes for them.
type CryptoLib struct {
	meta *ContractMD
}

// NewCryptoLib creates a CryptoLib instance with its ABI wired.
func NewCryptoLib() *CryptoLib {
	c := &CryptoLib{meta: NewContractMD(nativenames.CryptoLib, CryptoLibContractID)}

	c.meta.AddMethod(MethodAndPrice{Func: c.sha256, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 15},
		toMethod("sha256", smartcontract.ByteArrayType, true, manifest.NewParameter("data", smartcontract.ByteArrayType)))
	c.meta.AddMethod(MethodAndPrice{Func: c.ripemd160, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 15},
		toMethod("ripemd160", smartcontract.ByteArrayType, true, manifest.NewParameter("data", smartcontract.ByteArrayType)))
	c.meta.AddMethod(MethodAndPrice{Func: c.keccak256, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 15},
		toMethod("keccak256", smartcontract.ByteArrayType, true, manifest.NewParameter("data", smartcontract.ByteArrayType)))
	c.meta.AddMethod(MethodAndPrice{Func: c.murmur32, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 13},
		toMethod("murmur32", smartcontract.ByteArrayType, true,
			manifest.NewParameter("data", smartcontract.ByteArrayType),
			manifest.NewParameter("seed", smartcontract.IntegerType)))
	c.meta.AddMethod(MethodAndPrice{Func: c.verifyWithECDsa, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 15},
		toMethod("verifyWithECDsa", smartcontract.BoolType, true,
			manifest.NewParameter("message", smartcontract.ByteArrayType),
			manifest.NewParameter("pubkey", smartcontract.ByteArrayType),
			manifest.NewParameter("signature", smartcontract.ByteArrayType),
			manifest.NewParameter("curveHash", smartcontract.IntegerType)))
	c.meta.AddMethod(MethodAndPrice{Func: c.verifyWithEd25519, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 15},
		toMethod("verifyWithEd25519", smartcontract.BoolType, true,
			manifest.NewParameter("message", smartcontract.ByteArrayType),
			manifest.NewParameter("pubkey", smartcontract.ByteArrayType),
			manifest.NewParameter("signature", smartcontract.ByteArrayType)))
	c.meta.AddMethod(MethodAndPrice{Func: c.recoverSecp256K1, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 15},
		toMethod("recoverSecp256K1", smartcontract.ByteArrayType, true,
			manifest.NewParameter("messageHash", smartcontract.ByteArrayType),
			manifest.NewParameter("signature", smartcontract.ByteArrayType)))

	c.meta.AddMethod(MethodAndPrice{Func: c.bls12381Serialize, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 19},
		toMethod("bls12381Serialize", smartcontract.ByteArrayType, true, manifest.NewParameter("g", smartcontract.InteropInterfaceType)))
	c.meta.AddMethod(MethodAndPrice{Func: c.bls12381Deserialize, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 19},
		toMethod("bls12381Deserialize", smartcontract.InteropInterfaceType, true, manifest.NewParameter("data", smartcontract.ByteArrayType)))
	c.meta.AddMethod(MethodAndPrice{Func: c.bls12381Equal, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 5},
		toMethod("bls12381Equal", smartcontract.BoolType, true,
			manifest.NewParameter("x", smartcontract.InteropInterfaceType),
			manifest.NewParameter("y", smartcontract.InteropInterfaceType)))
	c.meta.AddMethod(MethodAndPrice{Func: c.bls12381Add, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 19},
		toMethod("bls12381Add", smartcontract.InteropInterfaceType, true,
			manifest.NewParameter("x", smartcontract.InteropInterfaceType),
			manifest.NewParameter("y", smartcontract.InteropInterfaceType)))
	c.meta.AddMethod(MethodAndPrice{Func: c.bls12381Mul, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 21},
		toMethod("bls12381Mul", smartcontract.InteropInterfaceType, true,
			manifest.NewParameter("x", smartcontract.InteropInterfaceType),
			manifest.NewParameter("mul", smartcontract.ByteArrayType),
			manifest.NewParameter("neg", smartcontract.BoolType)))
	c.meta.AddMethod(MethodAndPrice{Func: c.bls12381Pairing, RequiredFlags: callflag.NoneFlag, CPUFee: 1 << 23},
		toMethod("bls12381Pairing", smartcontract.InteropInterfaceType, true,
			manifest.NewParameter("g1", smartcontract.InteropInterfaceType),
			manifest.NewParameter("g2", smartcontract.InteropInterfaceType)))

	return c
}

// Metadata implements NativeContract.
func (c *CryptoLib) Metadata() *ContractMD { return c.meta }

// Initialize implements NativeContract; CryptoLib is stateless.
func (c *CryptoLib) Initialize(ic *interop.Context) error { return nil }

// OnPersist implements NativeContract.
func (c *CryptoLib) OnPersist(ic *interop.Context) error { return nil }

// PostPersist implements NativeContract.
func (c *CryptoLib) PostPersist(ic *interop.Context) error { return nil }

func curveHasher(curveHash NamedCurveHash) (HashFunc, error) {
	switch curveHash {
	case Secp256r1Sha256, Secp256k1Sha256:
		return hash.Sha256, nil
	case Secp256r1Keccak256, Secp256k1Keccak256:
		return Keccak256, nil
	default:
		return nil, ErrUnsupportedCurveHash
	}
}

// VerifyWithECDsa checks sig against msg under pub, using the curve and
// hash named by curveHash.
func (c *CryptoLib) VerifyWithECDsa(msg, pubBytes, sig []byte, curveHash NamedCurveHash) (bool, error) {
	hasher, err := curveHasher(curveHash)
	if err != nil {
		return false, err
	}
	digest := hasher(msg)
	switch curveHash {
	case Secp256r1Sha256, Secp256r1Keccak256:
		pub, err := keys.NewPublicKeyFromBytes(pubBytes)
		if err != nil {
			return false, nil
		}
		return pub.VerifyDigest(sig, digest.BytesBE()), nil
	case Secp256k1Sha256, Secp256k1Keccak256:
		return keys.VerifySecp256k1(digest.BytesBE(), sig, pubBytes), nil
	default:
		return false, ErrUnsupportedCurveHash
	}
}

func (c *CryptoLib) sha256(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	h := hash.Sha256(b)
	return stackitem.NewByteArray(h.BytesBE())
}

func (c *CryptoLib) ripemd160(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	h := hash.RipeMD160(b)
	return stackitem.NewByteArray(h.BytesBE())
}

func (c *CryptoLib) keccak256(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	h := Keccak256(b)
	return stackitem.NewByteArray(h.BytesBE())
}

func (c *CryptoLib) murmur32(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	seed := toInt64(args[1])
	sum := murmur3.SeedSum32(uint32(seed), b)
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, sum)
	return stackitem.NewByteArray(out)
}

func (c *CryptoLib) verifyWithECDsa(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	msg, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	pub, err := args[1].Bytes()
	if err != nil {
		panic(err)
	}
	sig, err := args[2].Bytes()
	if err != nil {
		panic(err)
	}
	curveHash := toInt64(args[3])
	ok, err := c.VerifyWithECDsa(msg, pub, sig, NamedCurveHash(curveHash))
	if err != nil {
		return stackitem.NewBool(false)
	}
	return stackitem.NewBool(ok)
}

func (c *CryptoLib) verifyWithEd25519(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	msg, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	pub, err := args[1].Bytes()
	if err != nil {
		panic(err)
	}
	sig, err := args[2].Bytes()
	if err != nil {
		panic(err)
	}
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return stackitem.NewBool(false)
	}
	return stackitem.NewBool(ed25519.Verify(ed25519.PublicKey(pub), msg, sig))
}

func (c *CryptoLib) recoverSecp256K1(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	digest, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	sig, err := args[1].Bytes()
	if err != nil {
		panic(err)
	}
	if len(sig) != 65 {
		return stackitem.Null{}
	}
	pub, err := keys.RecoverSecp256k1(digest, sig[1:], sig[0])
	if err != nil {
		return stackitem.Null{}
	}
	return stackitem.NewByteArray(pub)
}

// blsPoint is the wrapped value held by an Interop stackitem when it
// represents a BLS12-381 group or target group element.
type blsPoint struct {
	g1 *bls12381.G1Affine
	g2 *bls12381.G2Affine
	gt *bls12381.GT
}

func blsPointFromItem(it stackitem.Item) *blsPoint {
	interop, ok := it.(*stackitem.Interop)
	if !ok {
		panic(errors.New("not a BLS12-381 point"))
	}
	p, ok := interop.Value().(*blsPoint)
	if !ok {
		panic(errors.New("not a BLS12-381 point"))
	}
	return p
}

func (c *CryptoLib) bls12381Serialize(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	p := blsPointFromItem(args[0])
	switch {
	case p.g1 != nil:
		b := p.g1.Bytes()
		return stackitem.NewByteArray(b[:])
	case p.g2 != nil:
		b := p.g2.Bytes()
		return stackitem.NewByteArray(b[:])
	case p.gt != nil:
		b := p.gt.Bytes()
		return stackitem.NewByteArray(b[:])
	default:
		panic(errors.New("empty BLS12-381 point"))
	}
}

func (c *CryptoLib) bls12381Deserialize(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	b, err := args[0].Bytes()
	if err != nil {
		panic(err)
	}
	switch len(b) {
	case bls12381.SizeOfG1AffineCompressed:
		var g1 bls12381.G1Affine
		if _, err := g1.SetBytes(b); err != nil {
			panic(err)
		}
		return stackitem.NewInterop(&blsPoint{g1: &g1})
	case bls12381.SizeOfG2AffineCompressed:
		var g2 bls12381.G2Affine
		if _, err := g2.SetBytes(b); err != nil {
			panic(err)
		}
		return stackitem.NewInterop(&blsPoint{g2: &g2})
	case bls12381.SizeOfGT:
		var gt bls12381.GT
		if err := gt.SetBytes(b); err != nil {
			panic(err)
		}
		return stackitem.NewInterop(&blsPoint{gt: &gt})
	default:
		panic(errors.New("invalid BLS12-381 point encoding length"))
	}
}

func (c *CryptoLib) bls12381Equal(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	x := blsPointFromItem(args[0])
	y := blsPointFromItem(args[1])
	switch {
	case x.g1 != nil && y.g1 != nil:
		return stackitem.NewBool(x.g1.Equal(y.g1))
	case x.g2 != nil && y.g2 != nil:
		return stackitem.NewBool(x.g2.Equal(y.g2))
	case x.gt != nil && y.gt != nil:
		return stackitem.NewBool(x.gt.Equal(y.gt))
	default:
		return stackitem.NewBool(false)
	}
}

func (c *CryptoLib) bls12381Add(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	x := blsPointFromItem(args[0])
	y := blsPointFromItem(args[1])
	switch {
	case x.g1 != nil && y.g1 != nil:
		var res bls12381.G1Affine
		var j, k bls12381.G1Jac
		j.FromAffine(x.g1)
		k.FromAffine(y.g1)
		j.AddAssign(&k)
		res.FromJacobian(&j)
		return stackitem.NewInterop(&blsPoint{g1: &res})
	case x.g2 != nil && y.g2 != nil:
		var res bls12381.G2Affine
		var j, k bls12381.G2Jac
		j.FromAffine(x.g2)
		k.FromAffine(y.g2)
		j.AddAssign(&k)
		res.FromJacobian(&j)
		return stackitem.NewInterop(&blsPoint{g2: &res})
	case x.gt != nil && y.gt != nil:
		var res bls12381.GT
		res.Mul(x.gt, y.gt)
		return stackitem.NewInterop(&blsPoint{gt: &res})
	default:
		panic(errors.New("mismatched or unsupported BLS12-381 point kinds"))
	}
}

func (c *CryptoLib) bls12381Mul(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	x := blsPointFromItem(args[0])
	mulBytes, err := args[1].Bytes()
	if err != nil {
		panic(err)
	}
	neg, err := args[2].TryBool()
	if err != nil {
		panic(err)
	}
	scalar := new(big.Int).SetBytes(mulBytes)
	if neg {
		scalar.Neg(scalar)
	}
	switch {
	case x.g1 != nil:
		var res bls12381.G1Affine
		res.ScalarMultiplication(x.g1, scalar)
		return stackitem.NewInterop(&blsPoint{g1: &res})
	case x.g2 != nil:
		var res bls12381.G2Affine
		res.ScalarMultiplication(x.g2, scalar)
		return stackitem.NewInterop(&blsPoint{g2: &res})
	default:
		panic(errors.New("bls12381Mul only supports G1 and G2 points"))
	}
}

func (c *CryptoLib) bls12381Pairing(ic *interop.Context, args []stackitem.Item) stackitem.Item {
	g1 := blsPointFromItem(args[0])
	g2 := blsPointFromItem(args[1])
	if g1.g1 == nil || g2.g2 == nil {
		panic(errors.New("bls12381Pairing requires a G1 and a G2 point"))
	}
	gt, err := bls12381.Pair([]bls12381.G1Affine{*g1.g1}, []bls12381.G2Affine{*g2.g2})
	if err != nil {
		panic(err)
	}
	return stackitem.NewInterop(&blsPoint{gt: &gt})
}
