package stats

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/kvmwatch/kvmwatch/pkg/arch"
)

// Field is a parsed field name. The grammar is either a bare
// tracepoint name or "tracepoint(SUBREASON)", the latter denoting a
// counter pre-filtered to a single numeric reason code.
type Field struct {
	Tracepoint string
	Subreason  string
}

// ParseField parses a field name against the grammar.
func ParseField(name string) (Field, error) {
	open := strings.IndexByte(name, '(')
	if open < 0 {
		if name == "" || strings.ContainsAny(name, ")") {
			return Field{}, errors.Wrap(ErrBadFieldName, name)
		}

		return Field{Tracepoint: name}, nil
	}

	if open == 0 || !strings.HasSuffix(name, ")") {
		return Field{}, errors.Wrap(ErrBadFieldName, name)
	}

	sub := name[open+1 : len(name)-1]
	if sub == "" || strings.ContainsAny(sub, "()") {
		return Field{}, errors.Wrap(ErrBadFieldName, name)
	}

	return Field{Tracepoint: name[:open], Subreason: sub}, nil
}

// Synthetic reports whether the field carries a sub-reason filter.
func (f Field) Synthetic() bool {
	return f.Subreason != ""
}

func (f Field) String() string {
	if !f.Synthetic() {
		return f.Tracepoint
	}

	return f.Tracepoint + "(" + f.Subreason + ")"
}

// FilterExpression resolves the kernel filter expression for a
// synthetic field from the profile's reason table, e.g.
// "exit_reason==12" for kvm_exit(HLT) on Intel. Bare fields resolve to
// the empty expression.
func (f Field) FilterExpression(profile *arch.Profile) (string, error) {
	if !f.Synthetic() {
		return "", nil
	}

	table, ok := profile.ReasonTables[f.Tracepoint]
	if !ok {
		return "", errors.Wrapf(ErrUnknownSubreason, "%s has no reason table", f.Tracepoint)
	}

	code, ok := table.Reasons[f.Subreason]
	if !ok {
		return "", errors.Wrapf(ErrUnknownSubreason, "%s(%s)", f.Tracepoint, f.Subreason)
	}

	return fmt.Sprintf("%s==%d", table.Field, code), nil
}
