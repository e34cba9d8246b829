package models

// UsageScope defines which document family a phase applies to.
type UsageScope string

const (
	ScopeAlvara       UsageScope = "alvara"
	ScopeRequerimento UsageScope = "requerimento"
	ScopeBoth         UsageScope = "both"
)

// Usage is a concrete document family a phase can be attached to. Unlike
// UsageScope it never holds "both"; it names the record being edited.
type Usage string

const (
	UsageAlvara       Usage = "alvara"
	UsageRequerimento Usage = "requerimento"
)

func (s UsageScope) IsValid() bool {
	switch s {
	case ScopeAlvara, ScopeRequerimento, ScopeBoth:
		return true
	}
	return false
}

func (u Usage) IsValid() bool {
	return u == UsageAlvara || u == UsageRequerimento
}

// Covers reports whether a phase with this scope may be attached to a record
// of the given usage.
func (s UsageScope) Covers(u Usage) bool {
	return s == ScopeBoth || string(s) == string(u)
}
