package extensibility

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/comalice/motionchart"
)

// FixedPolicy always asks for the same node type.
type FixedPolicy struct {
	Type motionchart.NodeType
}

func (p FixedPolicy) NextType(motionchart.NodeType, float64) motionchart.NodeType {
	return p.Type
}

// Rule maps a current node type and a distance condition to the wanted
// next type.
type Rule struct {
	From  motionchart.NodeType
	Op    string // ">", "<", ">=", "<=" or "*" for always
	Value float64
	To    motionchart.NodeType
}

func (r Rule) matches(current motionchart.NodeType, d float64) bool {
	if r.From != current {
		return false
	}
	switch r.Op {
	case "*":
		return true
	case ">":
		return d > r.Value
	case "<":
		return d < r.Value
	case ">=":
		return d >= r.Value
	case "<=":
		return d <= r.Value
	}
	return false
}

// ParseRule parses "from: distance op value -> to" or "from: * -> to", for
// example "idle: distance > 0.5 -> start".
func ParseRule(s string) (Rule, error) {
	head, to, ok := strings.Cut(s, "->")
	if !ok {
		return Rule{}, fmt.Errorf("rule %q: missing ->", s)
	}
	from, cond, ok := strings.Cut(head, ":")
	if !ok {
		return Rule{}, fmt.Errorf("rule %q: missing ':'", s)
	}

	var r Rule
	var err error
	if r.From, err = motionchart.ParseNodeType(strings.TrimSpace(from)); err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", s, err)
	}
	if r.To, err = motionchart.ParseNodeType(strings.TrimSpace(to)); err != nil {
		return Rule{}, fmt.Errorf("rule %q: %w", s, err)
	}

	parts := strings.Fields(cond)
	switch {
	case len(parts) == 1 && parts[0] == "*":
		r.Op = "*"
	case len(parts) == 3 && parts[0] == "distance":
		switch parts[1] {
		case ">", "<", ">=", "<=":
			r.Op = parts[1]
		default:
			return Rule{}, fmt.Errorf("rule %q: unknown operator %q", s, parts[1])
		}
		if r.Value, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return Rule{}, fmt.Errorf("rule %q: %w", s, err)
		}
	default:
		return Rule{}, fmt.Errorf("rule %q: condition must be \"distance op value\" or \"*\"", s)
	}
	return r, nil
}

// RulePolicy evaluates rules in order; the first match wins. Without a
// match it defers to Fallback.
type RulePolicy struct {
	Rules    []Rule
	Fallback motionchart.TransitionPolicy
}

// NewRulePolicy parses rules. A nil fallback uses the default distance
// policy with a half unit step.
func NewRulePolicy(fallback motionchart.TransitionPolicy, rules ...string) (*RulePolicy, error) {
	p := &RulePolicy{Fallback: fallback}
	if p.Fallback == nil {
		p.Fallback = motionchart.DistancePolicy{StepLength: 0.5}
	}
	for _, s := range rules {
		r, err := ParseRule(s)
		if err != nil {
			return nil, err
		}
		p.Rules = append(p.Rules, r)
	}
	return p, nil
}

func (p *RulePolicy) NextType(current motionchart.NodeType, d float64) motionchart.NodeType {
	for _, r := range p.Rules {
		if r.matches(current, d) {
			return r.To
		}
	}
	return p.Fallback.NextType(current, d)
}
