package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tilerules/internal/core"
	"github.com/vovakirdan/tilerules/internal/world"
)

// Lookup is what value resolution reads from.
type Lookup struct {
	Globals    map[string]world.Global
	Characters world.Characters
	// Actor returns the stage actor bound to a rule actor id.
	Actor  func(ruleActorID string) (*world.Actor, bool)
	Logger *log.Logger
}

// ResolveValue resolves v to a value. The comparator selects how the
// appearance pseudo-variable reads; pass "" in action contexts.
func ResolveValue(v world.RuleValue, lk Lookup, cmp world.Comparator) (world.Value, error) {
	switch val := v.(type) {
	case world.Constant:
		return world.Str(val.Value), nil
	case world.GlobalRef:
		g, ok := lk.Globals[val.Global]
		if !ok {
			if lk.Logger != nil {
				lk.Logger.Warn("global not found", "global", val.Global)
			}
			return world.NullValue, nil
		}
		return world.Str(g.Value), nil
	case world.ActorVariable:
		if lk.Actor == nil {
			return world.NullValue, nil
		}
		a, ok := lk.Actor(val.ActorID)
		if !ok {
			return world.NullValue, nil
		}
		ch, ok := lk.Characters[a.CharacterID]
		if !ok && lk.Logger != nil {
			lk.Logger.Warn("character not found", "actor", a.ID, "character", a.CharacterID)
		}
		return VariableValue(a, ch, val.Variable, cmp), nil
	case nil:
		return world.NullValue, fmt.Errorf("%w: missing value", ErrUnknownValue)
	default:
		return world.NullValue, fmt.Errorf("%w: %v", ErrUnknownValue, world.UnhandledVariant(v))
	}
}

// VariableValue reads a variable of an actor. The appearance pseudo-variable
// is the appearance id for = and != (and actions), and its display name for
// the other comparators so renamed appearances keep matching by name. The
// transform pseudo-variable is the raw code, or null when unset. Other
// variables fall back to the character's declared default.
func VariableValue(a *world.Actor, ch *world.Character, id string, cmp world.Comparator) world.Value {
	switch id {
	case world.VariableAppearance:
		if cmp == "" || cmp == world.CompareEqual || cmp == world.CompareNotEqual || ch == nil {
			return world.Str(a.Appearance)
		}
		return world.Str(ch.AppearanceName(a.Appearance))
	case world.VariableTransform:
		if a.Transform == "" {
			return world.NullValue
		}
		return world.Str(string(a.Transform))
	}
	if v, ok := a.VariableValues[id]; ok {
		return world.Str(v)
	}
	if ch != nil {
		if decl, ok := ch.Variables[id]; ok {
			return world.Str(decl.DefaultValue)
		}
	}
	return world.NullValue
}

// ApplyVariableOperation combines an existing value with an operand. add and
// subtract work on numbers; non-numeric input yields "NaN".
func ApplyVariableOperation(existing string, op world.Operation, operand string) (string, error) {
	switch op {
	case world.OpSet, "":
		return operand, nil
	case world.OpAdd:
		return FormatNumber(ParseNumber(existing) + ParseNumber(operand)), nil
	case world.OpSubtract:
		return FormatNumber(ParseNumber(existing) - ParseNumber(operand)), nil
	default:
		return existing, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
}

// ApplyTransformOperation sets or composes a transform. add applies the
// operand after the existing transform; subtract applies its inverse.
func ApplyTransformOperation(existing core.Transform, op world.Operation, operand core.Transform) (core.Transform, error) {
	if !operand.Valid() {
		return existing, fmt.Errorf("%w: %q", ErrInvalidTransform, operand)
	}
	switch op {
	case world.OpSet, "":
		return operand.Normalize(), nil
	case world.OpAdd:
		return core.Compose(existing, operand), nil
	case world.OpSubtract:
		return core.Compose(existing, core.Inverse(operand)), nil
	default:
		return existing, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
}

// ComparatorMatches evaluates a comparator. = and != compare string forms
// (null reads as "null"). Ordering comparators are numeric and false when
// either side is not a number. contains treats a left side holding a comma
// as a token list, so "ArrowLeft,Space" contains "Space" but not "A".
func ComparatorMatches(cmp world.Comparator, a, b world.Value) bool {
	as, bs := a.String(), b.String()
	switch cmp {
	case world.CompareEqual:
		return as == bs
	case world.CompareNotEqual:
		return as != bs
	case world.CompareGreaterEq, world.CompareLessEq, world.CompareGreater, world.CompareLess:
		an, bn := ParseNumber(as), ParseNumber(bs)
		if math.IsNaN(an) || math.IsNaN(bn) {
			return false
		}
		switch cmp {
		case world.CompareGreaterEq:
			return an >= bn
		case world.CompareLessEq:
			return an <= bn
		case world.CompareGreater:
			return an > bn
		default:
			return an < bn
		}
	case world.CompareContains:
		if strings.Contains(as, ",") {
			for _, tok := range strings.Split(as, ",") {
				if tok == bs {
					return true
				}
			}
			return false
		}
		return strings.Contains(as, bs)
	case world.CompareStartsWith:
		return strings.HasPrefix(as, bs)
	case world.CompareEndsWith:
		return strings.HasSuffix(as, bs)
	}
	return false
}

// ParseNumber converts a string the way authored content expects: surrounding
// space is ignored, the empty string is 0, hex needs a 0x prefix and
// anything else unparsable is NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	// ParseFloat also accepts inf, nan and hex floats, which are not numbers
	// here.
	if strings.ContainsAny(s, "iInNxXpP_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// FormatNumber renders a number without trailing zeros; integers have no
// decimal point.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
