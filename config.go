package pathsym

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Dereferencer resolves a concretely-read pointer value to an expression
// representing the dereferenced object. The result may mix concrete target
// objects, guards, and failure markers; it is not required to be SSA yet.
type Dereferencer interface {
	Dereference(pointer Expr, typ Type) (Expr, error)
}

// DereferencerFunc is an adapter allowing a function as a Dereferencer.
type DereferencerFunc func(pointer Expr, typ Type) (Expr, error)

// Dereference calls f.
func (f DereferencerFunc) Dereference(pointer Expr, typ Type) (Expr, error) {
	return f(pointer, typ)
}

// AddressOfEvaluator computes the address of a non-dereferenced lvalue.
type AddressOfEvaluator interface {
	AddressOf(object Expr, typ Type) (Expr, error)
}

// AddressOfEvaluatorFunc is an adapter allowing a function as an AddressOfEvaluator.
type AddressOfEvaluatorFunc func(object Expr, typ Type) (Expr, error)

// AddressOf calls f.
func (f AddressOfEvaluatorFunc) AddressOf(object Expr, typ Type) (Expr, error) {
	return f(object, typ)
}

// Simplifier performs algebraic and constant folding. Must be idempotent.
type Simplifier interface {
	Simplify(expr Expr) Expr
}

// SimplifierFunc is an adapter allowing a function as a Simplifier.
type SimplifierFunc func(expr Expr) Expr

// Simplify calls f.
func (f SimplifierFunc) Simplify(expr Expr) Expr { return f(expr) }

// Initializer synthesizes a type-appropriate default value.
// Returns false if the type has no canonical default.
type Initializer interface {
	ZeroValue(typ Type) (Expr, bool)
}

// Classifier reports the sharing of a base symbol identifier.
type Classifier interface {
	Classify(identifier string) VarKind
}

// ClassifierFunc is an adapter allowing a function as a Classifier.
type ClassifierFunc func(identifier string) VarKind

// Classify calls f.
func (f ClassifierFunc) Classify(identifier string) VarKind { return f(identifier) }

// PrefixClassifier classifies well-known engine-generated identifier prefixes
// and delegates everything else to Next (procedure-local when Next is nil).
type PrefixClassifier struct {
	Next Classifier
}

// Classify returns the sharing kind for identifier.
func (c PrefixClassifier) Classify(identifier string) VarKind {
	switch {
	case strings.HasPrefix(identifier, "dynamic::"),
		strings.HasPrefix(identifier, "dynamic_object_size"):
		return Shared
	case strings.HasPrefix(identifier, "arg::"),
		strings.Contains(identifier, "::va_arg"):
		return ProcedureLocal
	}
	if c.Next != nil {
		return c.Next.Classify(identifier)
	}
	return ProcedureLocal
}

// SymbolRegistry is an append-only table of synthesized auxiliary symbols
// (nondet inputs, unresolved dereference placeholders). Shared across all
// execution paths; insertion is serialized.
type SymbolRegistry struct {
	mu      sync.Mutex
	symbols []*SymbolExpr
}

// NewSymbolRegistry returns an empty registry.
func NewSymbolRegistry() *SymbolRegistry {
	return &SymbolRegistry{}
}

// Add appends a synthesized symbol to the registry.
func (r *SymbolRegistry) Add(sym *SymbolExpr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.symbols = append(r.symbols, sym)
}

// Symbols returns a copy of the registered symbols in insertion order.
func (r *SymbolRegistry) Symbols() []*SymbolExpr {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := make([]*SymbolExpr, len(r.symbols))
	copy(a, r.symbols)
	return a
}

// Len returns the number of registered symbols.
func (r *SymbolRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.symbols)
}

// Clear empties the registry between independent analysis runs.
func (r *SymbolRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.symbols = nil
}

// Config bundles the registries shared by all execution paths with the
// external collaborators consumed by the read pipeline.
type Config struct {
	// Shared mutable registries. Numbering must stay globally consistent
	// across all paths forked from one analysis.
	VarMap  *VarMap
	Symbols *SymbolRegistry

	// External collaborators. Dereferencer and AddressOf may be nil if the
	// analyzed expressions contain no pointer operations.
	Dereferencer Dereferencer
	AddressOf    AddressOfEvaluator
	Simplifier   Simplifier
	Initializer  Initializer

	Logger *zap.Logger
}

// NewConfig returns a Config with working defaults: prefix-based
// classification, the built-in constant folder, typed zero defaults, and a
// nop logger.
func NewConfig() *Config {
	return &Config{
		VarMap:      NewVarMap(PrefixClassifier{}),
		Symbols:     NewSymbolRegistry(),
		Simplifier:  SimplifierFunc(Fold),
		Initializer: ZeroInitializer{},
		Logger:      zap.NewNop(),
	}
}

// simplify applies the configured simplifier, or nothing if unset.
func (c *Config) simplify(expr Expr) Expr {
	if c.Simplifier == nil {
		return expr
	}
	return c.Simplifier.Simplify(expr)
}
