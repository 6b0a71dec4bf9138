package runtime

import (
	"encoding/binary"
	"errors"
	"math/big"
	"math/bits"

	"github.com/n3ledger/core/pkg/core/interop"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// GasLeft implements System.Runtime.GasLeft: push the remaining gas budget,
// or GasLimit unchanged when it is zero or negative (unmetered execution).
func GasLeft(ic *interop.Context) error {
	if ic.VM.GasLimit <= 0 {
		ic.VM.Estack().PushVal(ic.VM.GasLimit)
		return nil
	}
	ic.VM.Estack().PushVal(ic.VM.GasLimit - ic.VM.GasConsumed())
	return nil
}

// BurnGas implements System.Runtime.BurnGas: irrevocably charge the caller
// for an amount of gas beyond whatever the opcode/interop price tables
// already charged, used by contracts (and the NEO native contract's
// unclaimed-GAS bonus) to burn a caller-chosen amount.
func BurnGas(ic *interop.Context) error {
	gas := ic.VM.Estack().Pop().BigInt()
	if !gas.IsInt64() || gas.Sign() <= 0 {
		return errors.New("gas must be positive")
	}
	return ic.VM.UseGas(gas.Int64())
}

// GetNetwork implements System.Runtime.GetNetwork: push the network magic
// number the running chain was configured with.
func GetNetwork(ic *interop.Context) error {
	ic.VM.Estack().PushVal(int64(ic.Network))
	return nil
}

// GetNotifications implements System.Runtime.GetNotifications: push the
// notifications emitted so far, optionally filtered to a single contract.
func GetNotifications(ic *interop.Context) error {
	item := ic.VM.Estack().Pop().Item()
	var filter *util.Uint160
	if _, isNull := item.(stackitem.Null); !isNull {
		b, err := item.Bytes()
		if err != nil {
			return err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return err
		}
		filter = &u
	}

	result := make([]stackitem.Item, 0, len(ic.Notifications))
	for _, n := range ic.Notifications {
		if filter != nil && n.ScriptHash != *filter {
			continue
		}
		if len(result) >= vm.MaxStackSize {
			return errors.New("too many notifications")
		}
		n.Item.MarkAsReadOnly()
		result = append(result, stackitem.NewArray([]stackitem.Item{
			stackitem.NewByteArray(n.ScriptHash.BytesBE()),
			stackitem.NewByteArray([]byte(n.Name)),
			n.Item,
		}))
	}
	ic.VM.Estack().PushItem(stackitem.NewArray(result))
	return nil
}

// GetInvocationCounter implements System.Runtime.GetInvocationCounter: push
// the number of times the currently executing script has been invoked
// within this transaction, defaulting to one for a script seen for the
// first time.
func GetInvocationCounter(ic *interop.Context) error {
	ctx := ic.VM.Context()
	if ctx == nil {
		return errors.New("no executing context")
	}
	h := ctx.ScriptHash()
	count, ok := ic.Invocations[h]
	if !ok {
		count = 1
		if ic.Invocations == nil {
			ic.Invocations = make(map[util.Uint160]int)
		}
		ic.Invocations[h] = count
	}
	ic.VM.Estack().PushVal(int64(count))
	return nil
}

// GetRandom implements System.Runtime.GetRandom: derive the next value in a
// per-transaction pseudo-random sequence seeded from the transaction's
// nonce and the block it executes in, murmur128-mixed the way the reference
// client's deterministic RNG does.
func GetRandom(ic *interop.Context) error {
	seed := make([]byte, 0, 40)
	if ic.Block != nil {
		var nb [8]byte
		binary.LittleEndian.PutUint64(nb[:], ic.Block.Nonce)
		seed = append(seed, nb[:]...)
	}
	seed = append(seed, randomState(ic)...)

	h1 := murmur128(seed, uint32(ic.Network))
	h2 := murmur128(h1, uint32(ic.Network)+1)

	var n big.Int
	n.SetBytes(reverse(h2))
	ic.VM.Estack().PushVal(&n)
	return nil
}

// randomState folds the running gas-consumed counter into GetRandom's seed
// so repeated calls within one invocation advance the sequence instead of
// returning the same value.
func randomState(ic *interop.Context) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(ic.VM.GasConsumed()))
	return b[:]
}

func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

// murmur128 computes the 128-bit x64 variant of MurmurHash3 over data with
// the given seed, matching the reference client's Murmur128 implementation
// bit-for-bit (spec.md §7's deterministic RNG requirement).
func murmur128(data []byte, seed uint32) []byte {
	const (
		c1 = 0x87c37b91114253d5
		c2 = 0x4cf5ad432745937f
	)

	h1 := uint64(seed)
	h2 := uint64(seed)

	nblocks := len(data) / 16
	for i := 0; i < nblocks; i++ {
		block := data[i*16 : i*16+16]
		k1 := binary.LittleEndian.Uint64(block[0:8])
		k2 := binary.LittleEndian.Uint64(block[8:16])

		k1 *= c1
		k1 = bits.RotateLeft64(k1, 31)
		k1 *= c2
		h1 ^= k1

		h1 = bits.RotateLeft64(h1, 27)
		h1 += h2
		h1 = h1*5 + 0x52dce729

		k2 *= c2
		k2 = bits.RotateLeft64(k2, 33)
		k2 *= c1
		h2 ^= k2

		h2 = bits.RotateLeft64(h2, 31)
		h2 += h1
		h2 = h2*5 + 0x38495ab5
	}

	tail := data[nblocks*16:]
	var k1, k2 uint64
	switch len(tail) {
	case 15:
		k2 ^= uint64(tail[14]) << 48
		fallthrough
	case 14:
		k2 ^= uint64(tail[13]) << 40
		fallthrough
	case 13:
		k2 ^= uint64(tail[12]) << 32
		fallthrough
	case 12:
		k2 ^= uint64(tail[11]) << 24
		fallthrough
	case 11:
		k2 ^= uint64(tail[10]) << 16
		fallthrough
	case 10:
		k2 ^= uint64(tail[9]) << 8
		fallthrough
	case 9:
		k2 ^= uint64(tail[8])
		k2 *= c2
		k2 = bits.RotateLeft64(k2, 33)
		k2 *= c1
		h2 ^= k2
		fallthrough
	case 8:
		k1 ^= uint64(tail[7]) << 56
		fallthrough
	case 7:
		k1 ^= uint64(tail[6]) << 48
		fallthrough
	case 6:
		k1 ^= uint64(tail[5]) << 40
		fallthrough
	case 5:
		k1 ^= uint64(tail[4]) << 32
		fallthrough
	case 4:
		k1 ^= uint64(tail[3]) << 24
		fallthrough
	case 3:
		k1 ^= uint64(tail[2]) << 16
		fallthrough
	case 2:
		k1 ^= uint64(tail[1]) << 8
		fallthrough
	case 1:
		k1 ^= uint64(tail[0])
		k1 *= c1
		k1 = bits.RotateLeft64(k1, 31)
		k1 *= c2
		h1 ^= k1
	}

	h1 ^= uint64(len(data))
	h2 ^= uint64(len(data))

	h1 += h2
	h2 += h1

	h1 = fmix64(h1)
	h2 = fmix64(h2)

	h1 += h2
	h2 += h1

	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[0:8], h1)
	binary.LittleEndian.PutUint64(out[8:16], h2)
	return out
}

func fmix64(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}
