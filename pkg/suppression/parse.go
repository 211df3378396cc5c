// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package suppression

import (
	"strconv"
	"strings"

	"github.com/go-ini/ini"

	"github.com/woodard/libabigail-sub002/pkg/abierrors"
	"github.com/woodard/libabigail-sub002/pkg/abilog"
)

// Set is every rule loaded from one or more suppression files, grouped
// by subtype per spec.md 4.6.
type Set struct {
	TypeRules     []TypeRule
	FunctionRules []FunctionRule
	VariableRules []VariableRule
	FileRules     []FileRule
}

// Load parses data as an ini-flavored suppression specification
// (spec.md 6.2), dropping and logging any section that fails to parse
// rather than failing the whole file (spec.md 7). Section names repeat
// across the file, one per rule, which is why this walks Sections()
// instead of looking up the four names once.
func Load(data []byte, log abilog.Logger) (*Set, error) {
	if log == nil {
		log = abilog.NewNop()
	}
	f, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true, AllowShadows: true}, data)
	if err != nil {
		return nil, abierrors.Wrapf(abierrors.ErrMalformedSuppression, "%v", err)
	}

	s := &Set{}
	for _, sec := range f.Sections() {
		switch sec.Name() {
		case "suppress_type":
			if r, ok := parseTypeRule(sec, log); ok {
				s.TypeRules = append(s.TypeRules, r)
			}
		case "suppress_function":
			if r, ok := parseFunctionRule(sec, log); ok {
				s.FunctionRules = append(s.FunctionRules, r)
			}
		case "suppress_variable":
			if r, ok := parseVariableRule(sec, log); ok {
				s.VariableRules = append(s.VariableRules, r)
			}
		case "suppress_file":
			if r, ok := parseFileRule(sec, log); ok {
				s.FileRules = append(s.FileRules, r)
			}
		case "DEFAULT", ini.DefaultSection:
			// go-ini always exposes an implicit default section; it never
			// carries suppression keys.
		default:
			log.Warnf("suppression: unknown section %q dropped", sec.Name())
		}
	}
	return s, nil
}

func parseBinaryFilter(sec *ini.Section) binaryFilter {
	var f binaryFilter
	if v := sec.Key("file_name_regexp").String(); v != "" {
		f.fileNameRegexp = newLazyRegexp(v)
	}
	if v := sec.Key("file_name_not_regexp").String(); v != "" {
		f.fileNameNotRegexp = newLazyRegexp(v)
	}
	if v := sec.Key("soname_regexp").String(); v != "" {
		f.sonameRegexp = newLazyRegexp(v)
	}
	if v := sec.Key("soname_not_regexp").String(); v != "" {
		f.sonameNotRegexp = newLazyRegexp(v)
	}
	return f
}

func parseTypeRule(sec *ini.Section, log abilog.Logger) (TypeRule, bool) {
	r := TypeRule{binaryFilter: parseBinaryFilter(sec), Label: sec.Key("label").String()}
	r.Name = sec.Key("name").String()
	if v := sec.Key("name_regexp").String(); v != "" {
		r.NameRegexp = newLazyRegexp(v)
	}
	if v := sec.Key("name_not_regexp").String(); v != "" {
		r.NameNotRegexp = newLazyRegexp(v)
	}
	if v := sec.Key("has_data_member_named_regexp").String(); v != "" {
		r.DataMemberNamedRegexp = newLazyRegexp(v)
	}

	if v := sec.Key("type_kind").String(); v != "" {
		tk, ok := parseTypeKind(v)
		if !ok {
			log.Warnf("suppression: [suppress_type] %s: unrecognized type_kind %q, rule dropped", r.Label, v)
			return TypeRule{}, false
		}
		r.TypeKind = tk
	}
	if v := sec.Key("accessed_through").String(); v != "" {
		rk, ok := parseReachKind(v)
		if !ok {
			log.Warnf("suppression: [suppress_type] %s: unrecognized accessed_through %q, rule dropped", r.Label, v)
			return TypeRule{}, false
		}
		r.AccessedThrough = rk
	}
	if v := sec.Key("source_location_not_in").String(); v != "" {
		r.SourceLocationNotIn = parseList(v)
	}
	if v := sec.Key("source_location_not_regexp").String(); v != "" {
		r.SourceLocationNotRegexp = newLazyRegexp(v)
	}

	for _, key := range []string{"has_data_member_inserted_at"} {
		if v := sec.Key(key).String(); v != "" {
			b, err := parseBoundary(v)
			if err != nil {
				log.Warnf("suppression: [suppress_type] %s: %s: %v, rule dropped", r.Label, key, err)
				return TypeRule{}, false
			}
			r.InsertRanges = append(r.InsertRanges, DataMemberRange{Begin: b, End: b, Point: true})
		}
	}
	for _, key := range []string{"has_data_member_inserted_between"} {
		if v := sec.Key(key).String(); v != "" {
			rng, err := parseRange(v)
			if err != nil {
				log.Warnf("suppression: [suppress_type] %s: %s: %v, rule dropped", r.Label, key, err)
				return TypeRule{}, false
			}
			r.InsertRanges = append(r.InsertRanges, rng)
		}
	}
	for _, key := range []string{"has_data_members_inserted_between"} {
		if v := sec.Key(key).String(); v != "" {
			ranges, err := parseRangeList(v)
			if err != nil {
				log.Warnf("suppression: [suppress_type] %s: %s: %v, rule dropped", r.Label, key, err)
				return TypeRule{}, false
			}
			r.InsertRanges = append(r.InsertRanges, ranges...)
		}
	}

	if !checkRegexps(log, r.Label, r.NameRegexp, r.NameNotRegexp, r.SourceLocationNotRegexp, r.DataMemberNamedRegexp,
		r.fileNameRegexp, r.fileNameNotRegexp, r.sonameRegexp, r.sonameNotRegexp) {
		return TypeRule{}, false
	}
	return r, true
}

func parseFunctionRule(sec *ini.Section, log abilog.Logger) (FunctionRule, bool) {
	r := FunctionRule{binaryFilter: parseBinaryFilter(sec), Label: sec.Key("label").String()}
	r.Name = sec.Key("name").String()
	if v := sec.Key("name_regexp").String(); v != "" {
		r.NameRegexp = newLazyRegexp(v)
	}
	if v := sec.Key("name_not_regexp").String(); v != "" {
		r.NameNotRegexp = newLazyRegexp(v)
	}
	r.ReturnTypeName = sec.Key("return_type_name").String()
	if v := sec.Key("return_type_regexp").String(); v != "" {
		r.ReturnTypeRegexp = newLazyRegexp(v)
	}
	r.SymbolName = sec.Key("symbol_name").String()
	if v := sec.Key("symbol_name_regexp").String(); v != "" {
		r.SymbolNameRegexp = newLazyRegexp(v)
	}
	r.SymbolVersion = sec.Key("symbol_version").String()
	if v := sec.Key("symbol_version_regexp").String(); v != "" {
		r.SymbolVersionRegexp = newLazyRegexp(v)
	}
	r.AllowOtherAliases = sec.Key("allow_other_aliases").MustBool(false)

	if v := sec.Key("change_kind").String(); v != "" {
		ck, ok := parseChangeKind(v)
		if !ok {
			log.Warnf("suppression: [suppress_function] %s: unrecognized change_kind %q, rule dropped", r.Label, v)
			return FunctionRule{}, false
		}
		r.ChangeKind = ck
	}

	for _, raw := range sec.Key("parameter").ValueWithShadows() {
		ps, err := parseParamSpec(raw)
		if err != nil {
			log.Warnf("suppression: [suppress_function] %s: parameter %q: %v, rule dropped", r.Label, raw, err)
			return FunctionRule{}, false
		}
		r.Parameters = append(r.Parameters, ps)
	}

	if !checkRegexps(log, r.Label, r.NameRegexp, r.NameNotRegexp, r.ReturnTypeRegexp, r.SymbolNameRegexp, r.SymbolVersionRegexp,
		r.fileNameRegexp, r.fileNameNotRegexp, r.sonameRegexp, r.sonameNotRegexp) {
		return FunctionRule{}, false
	}
	for _, p := range r.Parameters {
		if p.Regexp != nil && !p.Regexp.Valid() {
			log.Warnf("suppression: [suppress_function] %s: malformed parameter regexp, rule dropped", r.Label)
			return FunctionRule{}, false
		}
	}
	return r, true
}

func parseVariableRule(sec *ini.Section, log abilog.Logger) (VariableRule, bool) {
	r := VariableRule{binaryFilter: parseBinaryFilter(sec), Label: sec.Key("label").String()}
	r.Name = sec.Key("name").String()
	if v := sec.Key("name_regexp").String(); v != "" {
		r.NameRegexp = newLazyRegexp(v)
	}
	if v := sec.Key("name_not_regexp").String(); v != "" {
		r.NameNotRegexp = newLazyRegexp(v)
	}
	r.TypeName = sec.Key("type_name").String()
	if v := sec.Key("type_name_regexp").String(); v != "" {
		r.TypeNameRegexp = newLazyRegexp(v)
	}
	r.SymbolName = sec.Key("symbol_name").String()
	if v := sec.Key("symbol_name_regexp").String(); v != "" {
		r.SymbolNameRegexp = newLazyRegexp(v)
	}
	r.SymbolVersion = sec.Key("symbol_version").String()
	if v := sec.Key("symbol_version_regexp").String(); v != "" {
		r.SymbolVersionRegexp = newLazyRegexp(v)
	}
	if v := sec.Key("change_kind").String(); v != "" {
		ck, ok := parseChangeKind(v)
		if !ok {
			log.Warnf("suppression: [suppress_variable] %s: unrecognized change_kind %q, rule dropped", r.Label, v)
			return VariableRule{}, false
		}
		r.ChangeKind = ck
	}

	if !checkRegexps(log, r.Label, r.NameRegexp, r.NameNotRegexp, r.TypeNameRegexp, r.SymbolNameRegexp, r.SymbolVersionRegexp,
		r.fileNameRegexp, r.fileNameNotRegexp, r.sonameRegexp, r.sonameNotRegexp) {
		return VariableRule{}, false
	}
	return r, true
}

func parseFileRule(sec *ini.Section, log abilog.Logger) (FileRule, bool) {
	r := FileRule{binaryFilter: parseBinaryFilter(sec), Label: sec.Key("label").String()}
	if !checkRegexps(log, r.Label, r.fileNameRegexp, r.fileNameNotRegexp, r.sonameRegexp, r.sonameNotRegexp) {
		return FileRule{}, false
	}
	return r, true
}

func checkRegexps(log abilog.Logger, label string, res ...*lazyRegexp) bool {
	for _, re := range res {
		if re != nil && !re.Valid() {
			log.Warnf("suppression: %s: malformed regexp %q, rule dropped", label, re.raw)
			return false
		}
	}
	return true
}

func parseTypeKind(v string) (TypeKindFilter, bool) {
	switch strings.TrimSpace(v) {
	case "class":
		return KindClass, true
	case "struct":
		return KindStruct, true
	case "union":
		return KindUnion, true
	case "enum":
		return KindEnum, true
	case "array":
		return KindArray, true
	case "typedef":
		return KindTypedef, true
	case "builtin":
		return KindBuiltin, true
	default:
		return KindAny, false
	}
}

func parseReachKind(v string) (ReachKind, bool) {
	switch strings.TrimSpace(v) {
	case "direct":
		return ReachDirect, true
	case "pointer":
		return ReachPointer, true
	case "reference":
		return ReachReference, true
	case "reference-or-pointer":
		return ReachReferenceOrPointer, true
	default:
		return ReachAny, false
	}
}

func parseChangeKind(v string) (ChangeKind, bool) {
	switch strings.TrimSpace(v) {
	case "function-subtype-change":
		return ChangeKindFunctionSubtypeChange, true
	case "added-function":
		return ChangeKindAddedFunction, true
	case "deleted-function":
		return ChangeKindDeletedFunction, true
	case "variable-subtype-change":
		return ChangeKindVariableSubtypeChange, true
	case "added-variable":
		return ChangeKindAddedVariable, true
	case "deleted-variable":
		return ChangeKindDeletedVariable, true
	case "all":
		return ChangeKindAll, true
	default:
		return ChangeKindAll, false
	}
}

// parseList splits a `{a, b, c}` list value into its trimmed elements,
// per spec.md 6.2's list-value syntax. go-ini's own Strings() helper
// assumes a bare comma-separated value without the brace delimiters
// libabigail's suppression dialect wraps lists in.
func parseList(v string) []string {
	v = stripBraces(v)
	if v == "" {
		return nil
	}
	parts := splitUnescaped(v, ',')
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(unescape(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseParamSpec parses a `parameter` value of the form
// '<index> <type-name-or-/regex/>'.
func parseParamSpec(raw string) (ParamSpec, error) {
	raw = strings.TrimSpace(raw)
	fields := strings.SplitN(raw, " ", 2)
	if len(fields) != 2 {
		return ParamSpec{}, abierrors.NewMalformedSuppression("suppress_function", "parameter must be '<index> <type>'")
	}
	idx, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return ParamSpec{}, abierrors.NewMalformedSuppression("suppress_function", "parameter index not an integer")
	}
	val := strings.TrimSpace(fields[1])
	if strings.HasPrefix(val, "/") && strings.HasSuffix(val, "/") && len(val) >= 2 {
		return ParamSpec{Index: idx, Regexp: newLazyRegexp(val[1 : len(val)-1])}, nil
	}
	return ParamSpec{Index: idx, TypeName: val}, nil
}

// parseBoundary parses one range endpoint: an integer, "end", or
// offset_of(member)/offset_after(member), per spec.md 4.6.
func parseBoundary(tok string) (Boundary, error) {
	tok = strings.TrimSpace(tok)
	switch {
	case tok == "end":
		return Boundary{kind: boundaryEnd}, nil
	case strings.HasPrefix(tok, "offset_of(") && strings.HasSuffix(tok, ")"):
		return Boundary{kind: boundaryOffsetOf, member: strings.TrimSpace(tok[len("offset_of(") : len(tok)-1])}, nil
	case strings.HasPrefix(tok, "offset_after(") && strings.HasSuffix(tok, ")"):
		return Boundary{kind: boundaryOffsetAfter, member: strings.TrimSpace(tok[len("offset_after(") : len(tok)-1])}, nil
	default:
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return Boundary{}, abierrors.NewMalformedSuppression("suppress_type", "unrecognized range boundary "+tok)
		}
		return Boundary{kind: boundaryLiteral, literal: n}, nil
	}
}

// parseRange parses a single `{begin, end}` tuple.
func parseRange(v string) (DataMemberRange, error) {
	v = stripBraces(v)
	parts := splitUnescaped(v, ',')
	if len(parts) != 2 {
		return DataMemberRange{}, abierrors.NewMalformedSuppression("suppress_type", "range must have exactly two boundaries")
	}
	begin, err := parseBoundary(parts[0])
	if err != nil {
		return DataMemberRange{}, err
	}
	end, err := parseBoundary(parts[1])
	if err != nil {
		return DataMemberRange{}, err
	}
	return DataMemberRange{Begin: begin, End: end}, nil
}

// parseRangeList parses the nested tuple syntax `{ {a, b}, {c, d} }`,
// which go-ini/ini does not natively model (spec.md 6.2), via a small
// recursive-descent split over top-level `{...}` groups.
func parseRangeList(v string) ([]DataMemberRange, error) {
	v = stripBraces(v)
	groups, err := splitTopLevelGroups(v)
	if err != nil {
		return nil, err
	}
	ranges := make([]DataMemberRange, 0, len(groups))
	for _, g := range groups {
		r, err := parseRange(g)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// splitTopLevelGroups splits "{a, b}, {c, d}" into ["{a, b}", "{c, d}"],
// respecting brace nesting depth so the inner commas are not mistaken
// for top-level separators.
func splitTopLevelGroups(v string) ([]string, error) {
	var groups []string
	depth := 0
	start := -1
	for i, r := range v {
		switch r {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			depth--
			if depth < 0 {
				return nil, abierrors.NewMalformedSuppression("suppress_type", "unbalanced braces in range list")
			}
			if depth == 0 {
				groups = append(groups, v[start+1:i])
			}
		}
	}
	if depth != 0 {
		return nil, abierrors.NewMalformedSuppression("suppress_type", "unbalanced braces in range list")
	}
	return groups, nil
}

func stripBraces(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "{")
	v = strings.TrimSuffix(v, "}")
	return strings.TrimSpace(v)
}

// splitUnescaped splits on sep, treating a backslash as an escape for
// the immediately following character (spec.md 6.2 "escape via \").
func splitUnescaped(v string, sep rune) []string {
	var out []string
	var cur strings.Builder
	escaped := false
	for _, r := range v {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == sep:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	out = append(out, cur.String())
	return out
}

func unescape(v string) string {
	return strings.ReplaceAll(v, "\\", "")
}
