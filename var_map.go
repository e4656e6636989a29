package pathsym

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/davecgh/go-spew/spew"
)

// VarKind classifies the sharing of a memory location across threads of the
// analyzed program.
type VarKind int

const (
	ProcedureLocal VarKind = iota
	ThreadLocal
	Shared
)

// String returns the string representation of the kind.
func (k VarKind) String() string {
	switch k {
	case ProcedureLocal:
		return "procedure-local"
	case ThreadLocal:
		return "thread-local"
	case Shared:
		return "shared"
	default:
		return fmt.Sprintf("VarKind<%d>", int(k))
	}
}

// VarInfo is the identity of one memory location: a base symbol plus an
// access-path suffix. Created once per distinct (symbol, suffix) pair and
// kept for the lifetime of the analysis.
type VarInfo struct {
	// FullIdentifier = Symbol + Suffix.
	FullIdentifier string
	Symbol         string
	Suffix         string

	Kind VarKind

	// Ordinal within the shared or local numbering space.
	Number uint

	// The symbol/member/index expression the location was first seen as.
	Original Expr

	// Generation counter, incremented by the write path before a new
	// incarnation is minted.
	ssaCounter uint
}

// IsShared returns true if the location is visible to other threads.
func (v *VarInfo) IsShared() bool { return v.Kind == Shared }

// Generation returns the current SSA generation of the location.
func (v *VarInfo) Generation() uint { return v.ssaCounter }

// IncrementSSACounter advances the generation. The write path must call this
// before minting a new incarnation for the location.
func (v *VarInfo) IncrementSSACounter() { v.ssaCounter++ }

// SSAIdentifier returns the versioned identifier of the current generation.
func (v *VarInfo) SSAIdentifier() string {
	return v.FullIdentifier + "#" + strconv.FormatUint(uint64(v.ssaCounter), 10)
}

// SSASymbol mints a symbol for the current generation of the location.
func (v *VarInfo) SSASymbol() *SymbolExpr {
	return &SymbolExpr{
		Identifier:     v.SSAIdentifier(),
		Type:           ExprType(v.Original),
		SSA:            true,
		FullIdentifier: v.FullIdentifier,
	}
}

// VarMap assigns a stable identity and ordinal number to every distinct
// memory-location access path. It is shared by all execution paths, so all
// mutation is serialized to keep numbering globally unique and deterministic.
type VarMap struct {
	mu         sync.Mutex
	classifier Classifier
	infos      map[string]*VarInfo

	sharedCount uint
	localCount  uint

	nondetCount  uint // free inputs and unresolved dereferences
	dynamicCount uint // memory allocation
}

// NewVarMap returns an empty VarMap classifying symbols with classifier.
// A nil classifier treats every location as procedure-local.
func NewVarMap(classifier Classifier) *VarMap {
	return &VarMap{
		classifier: classifier,
		infos:      make(map[string]*VarInfo),
	}
}

// Lookup returns the VarInfo for the (symbol, suffix) location, creating and
// numbering it on first use. The original expression is retained only from
// the creating call.
func (m *VarMap) Lookup(symbol, suffix string, original Expr) *VarInfo {
	assert(symbol != "", "var map: empty symbol identifier")

	m.mu.Lock()
	defer m.mu.Unlock()

	fullIdentifier := symbol + suffix
	if info, ok := m.infos[fullIdentifier]; ok {
		return info
	}

	info := &VarInfo{
		FullIdentifier: fullIdentifier,
		Symbol:         symbol,
		Suffix:         suffix,
		Original:       original,
		Kind:           ProcedureLocal,
	}
	if m.classifier != nil {
		info.Kind = m.classifier.Classify(symbol)
	}

	// Shared locations are numbered separately from locals.
	if info.IsShared() {
		info.Number = m.sharedCount
		m.sharedCount++
	} else {
		info.Number = m.localCount
		m.localCount++
	}

	m.infos[fullIdentifier] = info
	return info
}

// Find returns the VarInfo registered under fullIdentifier, or nil.
func (m *VarMap) Find(fullIdentifier string) *VarInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.infos[fullIdentifier]
}

// Len returns the number of registered locations.
func (m *VarMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.infos)
}

// NextAuxiliary allocates the next ordinal for nondet/deref auxiliary symbols.
func (m *VarMap) NextAuxiliary() uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.nondetCount
	m.nondetCount++
	return n
}

// NextDynamic allocates the next ordinal for dynamic memory objects.
func (m *VarMap) NextDynamic() uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.dynamicCount
	m.dynamicCount++
	return n
}

// Clear resets the map and all counters between independent analysis runs.
func (m *VarMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = make(map[string]*VarInfo)
	m.sharedCount = 0
	m.localCount = 0
	m.nondetCount = 0
	m.dynamicCount = 0
}

// Dump returns the contents of the map as a string, sorted by identifier.
func (m *VarMap) Dump() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.infos))
	for id := range m.infos {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var buf bytes.Buffer
	for _, id := range ids {
		info := m.infos[id]
		fmt.Fprintf(&buf, "%s:\n", id)
		fmt.Fprintf(&buf, "  symbol=%s suffix=%q\n", info.Symbol, info.Suffix)
		fmt.Fprintf(&buf, "  kind=%s number=%d generation=%d\n", info.Kind, info.Number, info.ssaCounter)
		fmt.Fprintf(&buf, "  original: %s", spew.Sdump(info.Original))
	}
	return buf.String()
}
