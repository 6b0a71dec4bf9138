package transaction

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/n3ledger/core/pkg/crypto/keys"
	"github.com/n3ledger/core/pkg/io"
	"github.com/n3ledger/core/pkg/util"
	"github.com/n3ledger/core/pkg/vm/stackitem"
)

// WitnessConditionType is the wire tag of a WitnessRule condition.
type WitnessConditionType byte

// Condition type tags, matching the values used on the wire and in the
// reference NeoVM's System.Contract.* rule evaluation.
const (
	WitnessBoolean          WitnessConditionType = 0x00
	WitnessNot              WitnessConditionType = 0x01
	WitnessAnd              WitnessConditionType = 0x02
	WitnessOr               WitnessConditionType = 0x03
	WitnessScriptHash       WitnessConditionType = 0x18
	WitnessGroup            WitnessConditionType = 0x19
	WitnessCalledByEntry    WitnessConditionType = 0x20
	WitnessCalledByContract WitnessConditionType = 0x28
	WitnessCalledByGroup    WitnessConditionType = 0x29
)

// String implements the fmt.Stringer interface.
func (t WitnessConditionType) String() string {
	switch t {
	case WitnessBoolean:
		return "Boolean"
	case WitnessNot:
		return "Not"
	case WitnessAnd:
		return "And"
	case WitnessOr:
		return "Or"
	case WitnessScriptHash:
		return "ScriptHash"
	case WitnessGroup:
		return "Group"
	case WitnessCalledByEntry:
		return "CalledByEntry"
	case WitnessCalledByContract:
		return "CalledByContract"
	case WitnessCalledByGroup:
		return "CalledByGroup"
	default:
		return "Unknown"
	}
}

// maxSubitems bounds the number of sub-conditions an And/Or condition carries.
const maxSubitems = 16

// maxConditionDepth bounds Not/And/Or nesting depth during decoding, guarding
// against stack-overflowing recursive conditions from an untrusted wire.
const maxConditionDepth = 2

// MatchContext exposes whatever a WitnessCondition needs to decide whether it
// matches, implemented by the interop context during witness checking.
type MatchContext interface {
	GetCallingScriptHash() util.Uint160
	GetCurrentScriptHash() util.Uint160
	GetEntryScriptHash() util.Uint160
	CallingScriptHasGroup(*keys.PublicKey) (bool, error)
	CurrentScriptHasGroup(*keys.PublicKey) (bool, error)
}

// WitnessCondition is a single node of a WitnessRule condition tree
// (spec.md §4.2).
type WitnessCondition interface {
	Type() WitnessConditionType
	Match(MatchContext) (bool, error)
	EncodeBinary(*io.BinWriter)
	DecodeBinarySpecific(*io.BinReader, int)
	MarshalJSON() ([]byte, error)
	ToStackItem() stackitem.Item
	Copy() WitnessCondition
}

type conditionAux struct {
	Type        string            `json:"type"`
	Expression  json.RawMessage   `json:"expression,omitempty"`
	Expressions []json.RawMessage `json:"expressions,omitempty"`
	Hash        *util.Uint160     `json:"hash,omitempty"`
	Group       *string           `json:"group,omitempty"`
}

// DecodeBinaryCondition reads a type tag and dispatches to the matching
// WitnessCondition's DecodeBinarySpecific, returning nil on any error or
// unknown tag (the error is left on r).
func DecodeBinaryCondition(r *io.BinReader) WitnessCondition {
	return decodeConditionDepth(r, maxConditionDepth)
}

func decodeConditionDepth(r *io.BinReader, depth int) WitnessCondition {
	if r.Err != nil {
		return nil
	}
	t := r.ReadB()
	if r.Err != nil {
		return nil
	}
	cond := newConditionByType(WitnessConditionType(t))
	if cond == nil {
		r.Err = fmt.Errorf("unknown witness condition type %x", t)
		return nil
	}
	cond.DecodeBinarySpecific(r, depth)
	if r.Err != nil {
		return nil
	}
	return cond
}

func newConditionByType(t WitnessConditionType) WitnessCondition {
	switch t {
	case WitnessBoolean:
		return new(ConditionBoolean)
	case WitnessNot:
		return new(ConditionNot)
	case WitnessAnd:
		return new(ConditionAnd)
	case WitnessOr:
		return new(ConditionOr)
	case WitnessScriptHash:
		return new(ConditionScriptHash)
	case WitnessGroup:
		return new(ConditionGroup)
	case WitnessCalledByEntry:
		return ConditionCalledByEntry{}
	case WitnessCalledByContract:
		return new(ConditionCalledByContract)
	case WitnessCalledByGroup:
		return new(ConditionCalledByGroup)
	default:
		return nil
	}
}

// UnmarshalConditionJSON parses a single JSON-encoded condition node.
func UnmarshalConditionJSON(data []byte) (WitnessCondition, error) {
	aux := new(conditionAux)
	if err := json.Unmarshal(data, aux); err != nil {
		return nil, err
	}
	switch aux.Type {
	case "Boolean":
		if len(aux.Expression) == 0 {
			return nil, errors.New("missing expression")
		}
		var b bool
		if err := json.Unmarshal(aux.Expression, &b); err != nil {
			return nil, err
		}
		c := ConditionBoolean(b)
		return &c, nil
	case "Not":
		if len(aux.Expression) == 0 {
			return nil, errors.New("missing expression")
		}
		inner, err := UnmarshalConditionJSON(aux.Expression)
		if err != nil {
			return nil, err
		}
		return &ConditionNot{inner}, nil
	case "And", "Or":
		if len(aux.Expressions) == 0 {
			return nil, errors.New("missing expressions")
		}
		if len(aux.Expressions) > maxSubitems {
			return nil, errors.New("too many sub-conditions")
		}
		conds := make([]WitnessCondition, len(aux.Expressions))
		for i, raw := range aux.Expressions {
			c, err := UnmarshalConditionJSON(raw)
			if err != nil {
				return nil, err
			}
			conds[i] = c
		}
		if aux.Type == "And" {
			r := ConditionAnd(conds)
			return &r, nil
		}
		r := ConditionOr(conds)
		return &r, nil
	case "ScriptHash":
		if aux.Hash == nil {
			return nil, errors.New("missing hash")
		}
		r := ConditionScriptHash(*aux.Hash)
		return &r, nil
	case "Group":
		pk, err := groupFromAux(aux.Group)
		if err != nil {
			return nil, err
		}
		r := ConditionGroup(*pk)
		return &r, nil
	case "CalledByEntry":
		return ConditionCalledByEntry{}, nil
	case "CalledByContract":
		if aux.Hash == nil {
			return nil, errors.New("missing hash")
		}
		r := ConditionCalledByContract(*aux.Hash)
		return &r, nil
	case "CalledByGroup":
		pk, err := groupFromAux(aux.Group)
		if err != nil {
			return nil, err
		}
		r := ConditionCalledByGroup(*pk)
		return &r, nil
	default:
		return nil, fmt.Errorf("unknown witness condition type %q", aux.Type)
	}
}

func groupFromAux(s *string) (*keys.PublicKey, error) {
	if s == nil {
		return nil, errors.New("missing group")
	}
	b, err := hex.DecodeString(*s)
	if err != nil {
		return nil, err
	}
	return keys.NewPublicKeyFromBytes(b)
}

// ConditionBoolean is a constant boolean condition.
type ConditionBoolean bool

func (c *ConditionBoolean) Type() WitnessConditionType { return WitnessBoolean }
func (c *ConditionBoolean) Match(MatchContext) (bool, error) {
	return bool(*c), nil
}
func (c *ConditionBoolean) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessBoolean))
	w.WriteBool(bool(*c))
}
func (c *ConditionBoolean) DecodeBinarySpecific(r *io.BinReader, _ int) {
	*c = ConditionBoolean(r.ReadBool())
}
func (c *ConditionBoolean) MarshalJSON() ([]byte, error) {
	expr, err := json.Marshal(bool(*c))
	if err != nil {
		return nil, err
	}
	return json.Marshal(conditionAux{Type: c.Type().String(), Expression: expr})
}
func (c *ConditionBoolean) ToStackItem() stackitem.Item {
	return stackitem.NewArray([]stackitem.Item{
		stackitem.Make(WitnessBoolean),
		stackitem.Make(bool(*c)),
	})
}
func (c *ConditionBoolean) Copy() WitnessCondition {
	b := *c
	return &b
}

// ConditionNot negates its inner condition.
type ConditionNot struct {
	Condition WitnessCondition
}

func (c *ConditionNot) Type() WitnessConditionType { return WitnessNot }
func (c *ConditionNot) Match(ctx MatchContext) (bool, error) {
	ok, err := c.Condition.Match(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
func (c *ConditionNot) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessNot))
	c.Condition.EncodeBinary(w)
}
func (c *ConditionNot) DecodeBinarySpecific(r *io.BinReader, depth int) {
	if depth <= 0 {
		r.Err = errors.New("max witness condition depth exceeded")
		return
	}
	c.Condition = decodeConditionDepth(r, depth-1)
}
func (c *ConditionNot) MarshalJSON() ([]byte, error) {
	expr, err := c.Condition.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(conditionAux{Type: c.Type().String(), Expression: expr})
}
func (c *ConditionNot) ToStackItem() stackitem.Item {
	return stackitem.NewArray([]stackitem.Item{
		stackitem.Make(WitnessNot),
		c.Condition.ToStackItem(),
	})
}
func (c *ConditionNot) Copy() WitnessCondition {
	return &ConditionNot{c.Condition.Copy()}
}

// ConditionAnd matches when every sub-condition matches.
type ConditionAnd []WitnessCondition

func (c *ConditionAnd) Type() WitnessConditionType { return WitnessAnd }
func (c *ConditionAnd) Match(ctx MatchContext) (bool, error) {
	for _, cond := range *c {
		ok, err := cond.Match(ctx)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
func (c *ConditionAnd) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessAnd))
	w.WriteArray(len(*c), func(i int) { (*c)[i].EncodeBinary(w) })
}
func (c *ConditionAnd) DecodeBinarySpecific(r *io.BinReader, depth int) {
	if depth <= 0 {
		r.Err = errors.New("max witness condition depth exceeded")
		return
	}
	var elems []WitnessCondition
	r.ReadArray(func() {
		elems = append(elems, decodeConditionDepth(r, depth-1))
	}, maxSubitems)
	if r.Err == nil && len(elems) == 0 {
		r.Err = errors.New("empty And condition")
		return
	}
	*c = elems
}
func (c *ConditionAnd) MarshalJSON() ([]byte, error) {
	exprs := make([]json.RawMessage, len(*c))
	for i, cond := range *c {
		b, err := cond.MarshalJSON()
		if err != nil {
			return nil, err
		}
		exprs[i] = b
	}
	return json.Marshal(conditionAux{Type: c.Type().String(), Expressions: exprs})
}
func (c *ConditionAnd) ToStackItem() stackitem.Item {
	items := make([]stackitem.Item, len(*c))
	for i, cond := range *c {
		items[i] = cond.ToStackItem()
	}
	return stackitem.NewArray([]stackitem.Item{
		stackitem.Make(WitnessAnd),
		stackitem.NewArray(items),
	})
}
func (c *ConditionAnd) Copy() WitnessCondition {
	out := make(ConditionAnd, len(*c))
	for i, cond := range *c {
		out[i] = cond.Copy()
	}
	return &out
}

// ConditionOr matches when at least one sub-condition matches.
type ConditionOr []WitnessCondition

func (c *ConditionOr) Type() WitnessConditionType { return WitnessOr }
func (c *ConditionOr) Match(ctx MatchContext) (bool, error) {
	for _, cond := range *c {
		ok, err := cond.Match(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
func (c *ConditionOr) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessOr))
	w.WriteArray(len(*c), func(i int) { (*c)[i].EncodeBinary(w) })
}
func (c *ConditionOr) DecodeBinarySpecific(r *io.BinReader, depth int) {
	if depth <= 0 {
		r.Err = errors.New("max witness condition depth exceeded")
		return
	}
	var elems []WitnessCondition
	r.ReadArray(func() {
		elems = append(elems, decodeConditionDepth(r, depth-1))
	}, maxSubitems)
	if r.Err == nil && len(elems) == 0 {
		r.Err = errors.New("empty Or condition")
		return
	}
	*c = elems
}
func (c *ConditionOr) MarshalJSON() ([]byte, error) {
	exprs := make([]json.RawMessage, len(*c))
	for i, cond := range *c {
		b, err := cond.MarshalJSON()
		if err != nil {
			return nil, err
		}
		exprs[i] = b
	}
	return json.Marshal(conditionAux{Type: c.Type().String(), Expressions: exprs})
}
func (c *ConditionOr) ToStackItem() stackitem.Item {
	items := make([]stackitem.Item, len(*c))
	for i, cond := range *c {
		items[i] = cond.ToStackItem()
	}
	return stackitem.NewArray([]stackitem.Item{
		stackitem.Make(WitnessOr),
		stackitem.NewArray(items),
	})
}
func (c *ConditionOr) Copy() WitnessCondition {
	out := make(ConditionOr, len(*c))
	for i, cond := range *c {
		out[i] = cond.Copy()
	}
	return &out
}

// ConditionScriptHash matches the currently executing script's hash.
type ConditionScriptHash util.Uint160

func (c *ConditionScriptHash) Type() WitnessConditionType { return WitnessScriptHash }
func (c *ConditionScriptHash) Match(ctx MatchContext) (bool, error) {
	return ctx.GetCurrentScriptHash() == util.Uint160(*c), nil
}
func (c *ConditionScriptHash) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessScriptHash))
	w.WriteBytes(c[:])
}
func (c *ConditionScriptHash) DecodeBinarySpecific(r *io.BinReader, _ int) {
	r.ReadBytes(c[:])
}
func (c *ConditionScriptHash) MarshalJSON() ([]byte, error) {
	h := util.Uint160(*c)
	return json.Marshal(conditionAux{Type: c.Type().String(), Hash: &h})
}
func (c *ConditionScriptHash) ToStackItem() stackitem.Item {
	return stackitem.NewArray([]stackitem.Item{
		stackitem.Make(WitnessScriptHash),
		stackitem.Make(c[:]),
	})
}
func (c *ConditionScriptHash) Copy() WitnessCondition {
	h := *c
	return &h
}

// ConditionGroup matches if the current script belongs to a group.
type ConditionGroup keys.PublicKey

func (c *ConditionGroup) Type() WitnessConditionType { return WitnessGroup }
func (c *ConditionGroup) Match(ctx MatchContext) (bool, error) {
	return ctx.CurrentScriptHasGroup((*keys.PublicKey)(c))
}
func (c *ConditionGroup) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessGroup))
	(*keys.PublicKey)(c).EncodeBinary(w)
}
func (c *ConditionGroup) DecodeBinarySpecific(r *io.BinReader, _ int) {
	(*keys.PublicKey)(c).DecodeBinary(r)
}
func (c *ConditionGroup) MarshalJSON() ([]byte, error) {
	s := hex.EncodeToString((*keys.PublicKey)(c).Bytes())
	return json.Marshal(conditionAux{Type: c.Type().String(), Group: &s})
}
func (c *ConditionGroup) ToStackItem() stackitem.Item {
	return stackitem.NewArray([]stackitem.Item{
		stackitem.Make(WitnessGroup),
		stackitem.Make((*keys.PublicKey)(c).Bytes()),
	})
}
func (c *ConditionGroup) Copy() WitnessCondition {
	g := *c
	return &g
}

// ConditionCalledByEntry matches when invoked directly by (or as) the entry
// script, the default and most common scope.
type ConditionCalledByEntry struct{}

func (c ConditionCalledByEntry) Type() WitnessConditionType { return WitnessCalledByEntry }
func (c ConditionCalledByEntry) Match(ctx MatchContext) (bool, error) {
	return ctx.GetCallingScriptHash() == ctx.GetEntryScriptHash() ||
		ctx.GetCurrentScriptHash() == ctx.GetEntryScriptHash(), nil
}
func (c ConditionCalledByEntry) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessCalledByEntry))
}
func (c ConditionCalledByEntry) DecodeBinarySpecific(*io.BinReader, int) {}
func (c ConditionCalledByEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(conditionAux{Type: c.Type().String()})
}
func (c ConditionCalledByEntry) ToStackItem() stackitem.Item {
	return stackitem.NewArray([]stackitem.Item{stackitem.Make(WitnessCalledByEntry)})
}
func (c ConditionCalledByEntry) Copy() WitnessCondition { return c }

// ConditionCalledByContract matches when the calling script has the given hash.
type ConditionCalledByContract util.Uint160

func (c *ConditionCalledByContract) Type() WitnessConditionType { return WitnessCalledByContract }
func (c *ConditionCalledByContract) Match(ctx MatchContext) (bool, error) {
	return ctx.GetCallingScriptHash() == util.Uint160(*c), nil
}
func (c *ConditionCalledByContract) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessCalledByContract))
	w.WriteBytes(c[:])
}
func (c *ConditionCalledByContract) DecodeBinarySpecific(r *io.BinReader, _ int) {
	r.ReadBytes(c[:])
}
func (c *ConditionCalledByContract) MarshalJSON() ([]byte, error) {
	h := util.Uint160(*c)
	return json.Marshal(conditionAux{Type: c.Type().String(), Hash: &h})
}
func (c *ConditionCalledByContract) ToStackItem() stackitem.Item {
	return stackitem.NewArray([]stackitem.Item{
		stackitem.Make(WitnessCalledByContract),
		stackitem.Make(c[:]),
	})
}
func (c *ConditionCalledByContract) Copy() WitnessCondition {
	h := *c
	return &h
}

// ConditionCalledByGroup matches when the calling script belongs to a group.
type ConditionCalledByGroup keys.PublicKey

func (c *ConditionCalledByGroup) Type() WitnessConditionType { return WitnessCalledByGroup }
func (c *ConditionCalledByGroup) Match(ctx MatchContext) (bool, error) {
	return ctx.CallingScriptHasGroup((*keys.PublicKey)(c))
}
func (c *ConditionCalledByGroup) EncodeBinary(w *io.BinWriter) {
	w.WriteB(byte(WitnessCalledByGroup))
	(*keys.PublicKey)(c).EncodeBinary(w)
}
func (c *ConditionCalledByGroup) DecodeBinarySpecific(r *io.BinReader, _ int) {
	(*keys.PublicKey)(c).DecodeBinary(r)
}
func (c *ConditionCalledByGroup) MarshalJSON() ([]byte, error) {
	s := hex.EncodeToString((*keys.PublicKey)(c).Bytes())
	return json.Marshal(conditionAux{Type: c.Type().String(), Group: &s})
}
func (c *ConditionCalledByGroup) ToStackItem() stackitem.Item {
	return stackitem.NewArray([]stackitem.Item{
		stackitem.Make(WitnessCalledByGroup),
		stackitem.Make((*keys.PublicKey)(c).Bytes()),
	})
}
func (c *ConditionCalledByGroup) Copy() WitnessCondition {
	g := *c
	return &g
}
