package pathsym

import (
	"bytes"
	"fmt"

	"github.com/benbjohnson/immutable"
)

// VarState is the per-path record for one memory location: the current SSA
// incarnation and, when known, a propagated value. Records are immutable once
// stored; updates replace the record.
type VarState struct {
	SSASymbol *SymbolExpr
	Value     Expr
}

// State holds one execution path's view of all variables. The variable map
// and auxiliary symbol registry are shared with every other path forked from
// the same Config; the per-location states are not.
type State struct {
	config *Config

	// Full location identifier to *VarState.
	vars *immutable.SortedMap
}

// NewState returns an empty state evaluating against config.
func NewState(config *Config) *State {
	return &State{
		config: config,
		vars:   immutable.NewSortedMap(&stringComparer{}),
	}
}

// Config returns the shared configuration of the state.
func (s *State) Config() *Config { return s.config }

// Fork returns a copy of the state for exploring another branch. The variable
// states are isolated from the parent; the variable map and symbol registry
// remain shared so numbering stays globally consistent.
func (s *State) Fork() *State {
	return &State{config: s.config, vars: s.vars}
}

// varState returns the record for a location, or nil if never read.
func (s *State) varState(info *VarInfo) *VarState {
	if value, _ := s.vars.Get(info.FullIdentifier); value != nil {
		return value.(*VarState)
	}
	return nil
}

// setVarState replaces the record for a location.
func (s *State) setVarState(info *VarInfo, state *VarState) {
	s.vars = s.vars.Set(info.FullIdentifier, state)
}

// RecordWrite notes an external write to a location on this path: the
// generation counter advances and the cached incarnation and value are
// dropped, so the next read mints a fresh SSA symbol.
func (s *State) RecordWrite(info *VarInfo) {
	info.IncrementSSACounter()
	s.vars = s.vars.Delete(info.FullIdentifier)
}

// newAuxiliarySymbol mints and registers a fresh auxiliary symbol named from
// the shared counter, e.g. nondet::3 or deref::7.
func (s *State) newAuxiliarySymbol(tag string, typ Type) *SymbolExpr {
	n := s.config.VarMap.NextAuxiliary()
	sym := &SymbolExpr{
		Identifier: fmt.Sprintf("%s::%d", tag, n),
		Type:       typ,
	}
	s.config.Symbols.Add(sym)
	return sym
}

// Dump returns the contents of the per-path variable states as a string.
func (s *State) Dump() string {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "VARIABLE STATES")
	fmt.Fprintln(&buf, "===============")

	itr := s.vars.Iterator()
	for !itr.Done() {
		k, v := itr.Next()
		state := v.(*VarState)
		fmt.Fprintf(&buf, "%s:\n", k.(string))
		if state.SSASymbol != nil {
			fmt.Fprintf(&buf, "  ssa=%s\n", state.SSASymbol)
		}
		if state.Value != nil {
			fmt.Fprintf(&buf, "  value=%s\n", state.Value)
		}
	}
	return buf.String()
}

// stringComparer compares two string keys. Implements immutable.Comparer.
type stringComparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b,
// and returns 0 if a is equal to b. Panic if a or b is not a string.
func (c *stringComparer) Compare(a, b interface{}) int {
	if i, j := a.(string), b.(string); i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}
