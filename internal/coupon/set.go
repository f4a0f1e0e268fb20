package coupon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// MapPolicySet implements PolicySet using a map for O(1) lookups.
type MapPolicySet struct {
	policies map[string]Effect
}

// NewMapPolicySet creates a new map-based policy set.
func NewMapPolicySet(capacity int) *MapPolicySet {
	return &MapPolicySet{
		policies: make(map[string]Effect, capacity),
	}
}

// DefaultPolicies returns the storefront's built-in coupons.
func DefaultPolicies() PolicySet {
	set := NewMapPolicySet(3)
	set.Add("BIJU10", Effect{Type: EffectPercentDiscount, Rate: decimal.RequireFromString("0.10")})
	set.Add("BIJU20", Effect{Type: EffectPercentDiscount, Rate: decimal.RequireFromString("0.20")})
	set.Add("FRETE", Effect{Type: EffectFreeShipping, Rate: decimal.Zero})
	return set
}

func (s *MapPolicySet) Lookup(code string) (Effect, bool) {
	effect, exists := s.policies[code]
	return effect, exists
}

func (s *MapPolicySet) Size() int {
	return len(s.policies)
}

func (s *MapPolicySet) Codes() []string {
	codes := make([]string, 0, len(s.policies))
	for code := range s.policies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Add registers code, replacing any previous effect.
func (s *MapPolicySet) Add(code string, effect Effect) {
	s.policies[code] = effect
}

// Merge copies every policy of other into s. Codes in other win.
func (s *MapPolicySet) Merge(other PolicySet) {
	for _, code := range other.Codes() {
		effect, _ := other.Lookup(code)
		s.policies[code] = effect
	}
}

// ParsePolicyLine parses one "CODE TYPE [RATE]" line.
func ParsePolicyLine(line string) (string, Effect, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", Effect{}, fmt.Errorf("expected CODE TYPE [RATE], got %q", line)
	}

	code := fields[0]
	switch EffectType(fields[1]) {
	case EffectFreeShipping:
		if len(fields) != 2 {
			return "", Effect{}, fmt.Errorf("free_shipping takes no rate: %q", line)
		}
		return code, Effect{Type: EffectFreeShipping, Rate: decimal.Zero}, nil

	case EffectPercentDiscount:
		if len(fields) != 3 {
			return "", Effect{}, fmt.Errorf("percent_discount requires a rate: %q", line)
		}
		rate, err := decimal.NewFromString(fields[2])
		if err != nil {
			return "", Effect{}, fmt.Errorf("invalid rate %q: %w", fields[2], err)
		}
		if rate.LessThanOrEqual(decimal.Zero) || rate.GreaterThan(decimal.NewFromInt(1)) {
			return "", Effect{}, fmt.Errorf("rate must be in (0, 1]: %s", rate)
		}
		return code, Effect{Type: EffectPercentDiscount, Rate: rate}, nil

	default:
		return "", Effect{}, fmt.Errorf("unknown effect type %q", fields[1])
	}
}

// FormatPolicyLine renders a policy in the file format read by ParsePolicyLine.
func FormatPolicyLine(code string, effect Effect) string {
	if effect.Type == EffectFreeShipping {
		return fmt.Sprintf("%s %s", code, effect.Type)
	}
	return fmt.Sprintf("%s %s %s", code, effect.Type, effect.Rate.String())
}

// readPolicies parses an uncompressed policy stream. Blank lines and lines
// starting with # are skipped.
func readPolicies(ctx context.Context, r io.Reader, source string) (*MapPolicySet, error) {
	set := NewMapPolicySet(64)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		code, effect, err := ParsePolicyLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", source, lineNo, err)
		}
		set.Add(code, effect)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading policy file %s: %w", source, err)
	}

	return set, nil
}
