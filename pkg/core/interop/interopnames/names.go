// Package interopnames holds the dotted method names every native SYSCALL
// the VM can invoke is registered under, plus the ID each name hashes to on
// the wire (spec.md §5's narrow interop boundary: a stable numeric ID so a
// compiled script never has to carry the string).
package interopnames

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
)

// Contract, crypto, iterator, runtime and storage interop method names, the
// full set of non-native SYSCALLs the VM dispatches through
// pkg/core/interop's subpackages.
const (
	SystemContractCall                  = "System.Contract.Call"
	SystemContractCallNative             = "System.Contract.CallNative"
	SystemContractGetCallFlags          = "System.Contract.GetCallFlags"
	SystemContractCreateStandardAccount = "System.Contract.CreateStandardAccount"
	SystemContractCreateMultisigAccount = "System.Contract.CreateMultisigAccount"
	SystemContractNativeOnPersist       = "System.Contract.NativeOnPersist"
	SystemContractNativePostPersist     = "System.Contract.NativePostPersist"

	SystemCryptoCheckSig       = "System.Crypto.CheckSig"
	SystemCryptoCheckMultisig  = "System.Crypto.CheckMultisig"

	SystemIteratorNext  = "System.Iterator.Next"
	SystemIteratorValue = "System.Iterator.Value"

	SystemRuntimeBurnGas                = "System.Runtime.BurnGas"
	SystemRuntimeCheckWitness           = "System.Runtime.CheckWitness"
	SystemRuntimeGasLeft                = "System.Runtime.GasLeft"
	SystemRuntimeGetAddressVersion      = "System.Runtime.GetAddressVersion"
	SystemRuntimeGetCallingScriptHash   = "System.Runtime.GetCallingScriptHash"
	SystemRuntimeGetEntryScriptHash     = "System.Runtime.GetEntryScriptHash"
	SystemRuntimeGetExecutingScriptHash = "System.Runtime.GetExecutingScriptHash"
	SystemRuntimeGetInvocationCounter   = "System.Runtime.GetInvocationCounter"
	SystemRuntimeGetNetwork             = "System.Runtime.GetNetwork"
	SystemRuntimeGetNotifications       = "System.Runtime.GetNotifications"
	SystemRuntimeGetRandom              = "System.Runtime.GetRandom"
	SystemRuntimeGetScriptContainer     = "System.Runtime.GetScriptContainer"
	SystemRuntimeGetTime                = "System.Runtime.GetTime"
	SystemRuntimeGetTrigger             = "System.Runtime.GetTrigger"
	SystemRuntimeLoadScript             = "System.Runtime.LoadScript"
	SystemRuntimeLog                    = "System.Runtime.Log"
	SystemRuntimeNotify                 = "System.Runtime.Notify"
	SystemRuntimePlatform               = "System.Runtime.Platform"

	SystemStorageAsReadOnly         = "System.Storage.AsReadOnly"
	SystemStorageDelete             = "System.Storage.Delete"
	SystemStorageFind               = "System.Storage.Find"
	SystemStorageGet                = "System.Storage.Get"
	SystemStorageGetContext         = "System.Storage.GetContext"
	SystemStorageGetReadOnlyContext = "System.Storage.GetReadOnlyContext"
	SystemStoragePut                = "System.Storage.Put"
	// SystemStorageLocalGet is gated behind config.HFFaun, not yet active by
	// default; it reads from a context-local overlay instead of the shared
	// contract storage partition.
	SystemStorageLocalGet = "System.Storage.LocalGet"
)

// names is the full registry FromID scans; ToID never needs it since a
// name's ID is computed directly from its bytes.
var names = []string{
	SystemContractCall,
	SystemContractCallNative,
	SystemContractGetCallFlags,
	SystemContractCreateStandardAccount,
	SystemContractCreateMultisigAccount,
	SystemContractNativeOnPersist,
	SystemContractNativePostPersist,
	SystemCryptoCheckSig,
	SystemCryptoCheckMultisig,
	SystemIteratorNext,
	SystemIteratorValue,
	SystemRuntimeBurnGas,
	SystemRuntimeCheckWitness,
	SystemRuntimeGasLeft,
	SystemRuntimeGetAddressVersion,
	SystemRuntimeGetCallingScriptHash,
	SystemRuntimeGetEntryScriptHash,
	SystemRuntimeGetExecutingScriptHash,
	SystemRuntimeGetInvocationCounter,
	SystemRuntimeGetNetwork,
	SystemRuntimeGetNotifications,
	SystemRuntimeGetRandom,
	SystemRuntimeGetScriptContainer,
	SystemRuntimeGetTime,
	SystemRuntimeGetTrigger,
	SystemRuntimeLoadScript,
	SystemRuntimeLog,
	SystemRuntimeNotify,
	SystemRuntimePlatform,
	SystemStorageAsReadOnly,
	SystemStorageDelete,
	SystemStorageFind,
	SystemStorageGet,
	SystemStorageGetContext,
	SystemStorageGetReadOnlyContext,
	SystemStoragePut,
	SystemStorageLocalGet,
}

var errNotFound = errors.New("syscall not found")

// ToID computes the 4-byte little-endian prefix of name's SHA256 hash, the
// numeric SYSCALL identifier a compiled script carries instead of the
// dotted string.
func ToID(name []byte) uint32 {
	h := sha256.Sum256(name)
	return binary.LittleEndian.Uint32(h[:4])
}

// FromID reverse-looks-up id against the registered interop names, failing
// if id doesn't belong to any of them.
func FromID(id uint32) (string, error) {
	for _, n := range names {
		if ToID([]byte(n)) == id {
			return n, nil
		}
	}
	return "", errNotFound
}
