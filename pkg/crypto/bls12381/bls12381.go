// Package bls12381 wraps consensys/gnark-crypto's BLS12-381 implementation
// with the fixed-size point types and operations the CryptoLib native
// contract exposes (spec.md §4.2, §4.5).
package bls12381

import (
	"errors"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// G1Affine is a point on the BLS12-381 G1 curve.
type G1Affine = bls12381.G1Affine

// G2Affine is a point on the BLS12-381 G2 curve.
type G2Affine = bls12381.G2Affine

// GT is an element of the target group produced by pairing.
type GT = bls12381.GT

// Add adds two G1 points.
func Add(a, b *G1Affine) *G1Affine {
	var aj, bj, rj bls12381.G1Jac
	aj.FromAffine(a)
	bj.FromAffine(b)
	rj.Set(&aj).AddAssign(&bj)
	var r G1Affine
	r.FromJacobian(&rj)
	return &r
}

// AddG2 adds two G2 points.
func AddG2(a, b *G2Affine) *G2Affine {
	var aj, bj, rj bls12381.G2Jac
	aj.FromAffine(a)
	bj.FromAffine(b)
	rj.Set(&aj).AddAssign(&bj)
	var r G2Affine
	r.FromJacobian(&rj)
	return &r
}

// ScalarMul multiplies a G1 point by a big-endian encoded scalar.
func ScalarMul(p *G1Affine, scalar []byte) *G1Affine {
	var pj, rj bls12381.G1Jac
	pj.FromAffine(p)
	s := new(big.Int).SetBytes(scalar)
	rj.ScalarMultiplication(&pj, s)
	var r G1Affine
	r.FromJacobian(&rj)
	return &r
}

// Pairing performs a full multi-pairing check: e(p1,q1)*e(p2,q2)*...==1.
func PairingCheck(p []G1Affine, q []G2Affine) (bool, error) {
	if len(p) != len(q) || len(p) == 0 {
		return false, errors.New("bls12381: mismatched or empty point slices")
	}
	ok, err := bls12381.PairingCheck(p, q)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Deserialize reads a compressed G1 point, rejecting invalid encodings
// (spec.md §4.2: "invalid points rejected").
func DeserializeG1(data []byte) (*G1Affine, error) {
	var p G1Affine
	if _, err := p.SetBytes(data); err != nil {
		return nil, err
	}
	if !p.IsInSubGroup() {
		return nil, errors.New("bls12381: point not in correct subgroup")
	}
	return &p, nil
}

// Deserialize reads a compressed G2 point, rejecting invalid encodings.
func DeserializeG2(data []byte) (*G2Affine, error) {
	var p G2Affine
	if _, err := p.SetBytes(data); err != nil {
		return nil, err
	}
	if !p.IsInSubGroup() {
		return nil, errors.New("bls12381: point not in correct subgroup")
	}
	return &p, nil
}
