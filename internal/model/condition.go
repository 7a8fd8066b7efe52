package model

import "strings"

// Condition is the classified operator of a clause.
type Condition int

const (
	ConditionNone Condition = iota
	ConditionEqual
	ConditionLike
	ConditionIn
	ConditionGreaterThan
	ConditionLessThan
	ConditionGreaterThanOrEqual
	ConditionLessThanOrEqual
	ConditionUnequal
	ConditionExpLike
	ConditionNotLike
	ConditionIs
)

var conditionSymbols = map[Condition]string{
	ConditionEqual:              "=",
	ConditionLike:               "like",
	ConditionIn:                 "in",
	ConditionGreaterThan:        ">",
	ConditionLessThan:           "<",
	ConditionGreaterThanOrEqual: ">=",
	ConditionLessThanOrEqual:    "<=",
	ConditionUnequal:            "!=",
	ConditionExpLike:            "explike",
	ConditionNotLike:            "notlike",
	ConditionIs:                 "is",
}

// Symbol returns the clause symbol of the condition, or "" for ConditionNone.
func (c Condition) Symbol() string {
	return conditionSymbols[c]
}

func (c Condition) String() string {
	if c == ConditionNone {
		return "none"
	}
	return c.Symbol()
}

// Ordering reports whether c is one of > < >= <=.
func (c Condition) Ordering() bool {
	switch c {
	case ConditionGreaterThan, ConditionLessThan, ConditionGreaterThanOrEqual, ConditionLessThanOrEqual:
		return true
	}
	return false
}

// Symbols lists every accepted condition symbol in declaration order.
func Symbols() []string {
	out := make([]string, 0, len(conditionSymbols))
	for c := ConditionEqual; c <= ConditionIs; c++ {
		out = append(out, conditionSymbols[c])
	}
	return out
}

// Features is the flag set detected for a clause.
type Features uint8

const (
	// FeatureUseRegex is reserved and never set.
	FeatureUseRegex Features = 1 << iota
	// FeatureUseClientSideEvaluation is reserved and never set.
	FeatureUseClientSideEvaluation
	FeatureMulti
	FeatureFuzzy
	FeatureNot
)

var featureNames = []struct {
	flag Features
	name string
}{
	{FeatureUseRegex, "UseRegex"},
	{FeatureUseClientSideEvaluation, "UseClientSideEvaluation"},
	{FeatureMulti, "Multi"},
	{FeatureFuzzy, "Fuzzy"},
	{FeatureNot, "Not"},
}

// Has reports whether every flag in mask is set.
func (f Features) Has(mask Features) bool {
	return f&mask == mask
}

// Names returns the names of the set flags.
func (f Features) Names() []string {
	var out []string
	for _, fn := range featureNames {
		if f.Has(fn.flag) {
			out = append(out, fn.name)
		}
	}
	return out
}

func (f Features) String() string {
	if f == 0 {
		return "None"
	}
	return strings.Join(f.Names(), "|")
}
