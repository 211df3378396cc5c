// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package suppression

// BinaryContext identifies the object a decl/symbol/diff node came from,
// for the file-name/soname filters every rule subtype shares.
type BinaryContext struct {
	FileName string
	SOName   string
}

// InsertedMember describes one data member the diff engine found
// inserted into a class, for has_data_member_inserted_*  evaluation.
type InsertedMember struct {
	Name      string
	OffsetBits uint64
}

// TypeDescriptor is the diff engine's view of a type (or a class_or_union
// diff) being checked against [suppress_type] rules.
type TypeDescriptor struct {
	Name          string
	QualifiedName string
	Kind          TypeKindFilter
	ReachedThrough ReachKind
	SourceFile    string

	// MemberOffsetsBits/MemberSizeBits resolve offset_of/offset_after
	// expressions against "the first class" in the diff pair, per
	// spec.md 4.6.
	MemberOffsetsBits map[string]uint64
	MemberSizeBits    map[string]uint64
	SizeBits          uint64

	InsertedMembers []InsertedMember
}

// FunctionDescriptor is the diff engine's view of a function_decl (or a
// function_decl_diff) being checked against [suppress_function] rules.
type FunctionDescriptor struct {
	Name           string
	QualifiedName  string
	ReturnTypeName string
	Parameters     []string // type names, by position

	SymbolName    string
	SymbolVersion string
	AliasNames    []string

	ChangeKind ChangeKind
}

// VariableDescriptor is the diff engine's view of a var_decl (or a
// var_diff) being checked against [suppress_variable] rules.
type VariableDescriptor struct {
	Name          string
	QualifiedName string
	TypeName      string

	SymbolName    string
	SymbolVersion string
	AliasNames    []string

	ChangeKind ChangeKind
}

// SuppressesType implements the suppresses() contract for a type_diff or
// a type reached from one, per spec.md 4.6: all populated filters on a
// matching rule must hold conjunctively.
func (s *Set) SuppressesType(bc BinaryContext, d TypeDescriptor) bool {
	for _, r := range s.TypeRules {
		if typeRuleMatches(r, bc, d) {
			return true
		}
	}
	return false
}

func typeRuleMatches(r TypeRule, bc BinaryContext, d TypeDescriptor) bool {
	if !r.matchesBinary(bc.FileName, bc.SOName) {
		return false
	}
	if r.Name != "" && r.Name != d.Name && r.Name != d.QualifiedName {
		return false
	}
	if r.NameRegexp != nil && !r.NameRegexp.MatchString(d.QualifiedName) && !r.NameRegexp.MatchString(d.Name) {
		return false
	}
	if r.NameNotRegexp != nil && (r.NameNotRegexp.MatchString(d.QualifiedName) || r.NameNotRegexp.MatchString(d.Name)) {
		return false
	}
	if r.TypeKind != KindAny && r.TypeKind != d.Kind {
		return false
	}
	if r.AccessedThrough != ReachAny && !reachSatisfies(r.AccessedThrough, d.ReachedThrough) {
		return false
	}
	for _, loc := range r.SourceLocationNotIn {
		if loc == d.SourceFile {
			return false
		}
	}
	if r.SourceLocationNotRegexp != nil && r.SourceLocationNotRegexp.MatchString(d.SourceFile) {
		return false
	}
	if r.DataMemberNamedRegexp != nil {
		found := false
		for name := range d.MemberOffsetsBits {
			if r.DataMemberNamedRegexp.MatchString(name) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(r.InsertRanges) > 0 && !anyInsertedMemberInRanges(r.InsertRanges, d) {
		return false
	}
	return true
}

// reachSatisfies implements accessed_through = reference-or-pointer
// matching either a pointer or a reference reach, per spec.md 6.2.
func reachSatisfies(want, got ReachKind) bool {
	if want == ReachReferenceOrPointer {
		return got == ReachPointer || got == ReachReference
	}
	return want == got
}

func anyInsertedMemberInRanges(ranges []DataMemberRange, d TypeDescriptor) bool {
	for _, m := range d.InsertedMembers {
		for _, rng := range ranges {
			begin, ok1 := rng.Begin.Resolve(d.MemberOffsetsBits, d.MemberSizeBits, d.SizeBits)
			end, ok2 := rng.End.Resolve(d.MemberOffsetsBits, d.MemberSizeBits, d.SizeBits)
			if !ok1 || !ok2 {
				continue
			}
			if rng.Point {
				if m.OffsetBits == begin {
					return true
				}
				continue
			}
			if m.OffsetBits >= begin && m.OffsetBits < end {
				return true
			}
		}
	}
	return false
}

// SuppressesFunction implements the suppresses() contract for a
// function_decl_diff, per spec.md 4.6.
func (s *Set) SuppressesFunction(bc BinaryContext, d FunctionDescriptor) bool {
	for _, r := range s.FunctionRules {
		if functionRuleMatches(r, bc, d) {
			return true
		}
	}
	return false
}

func functionRuleMatches(r FunctionRule, bc BinaryContext, d FunctionDescriptor) bool {
	if !r.matchesBinary(bc.FileName, bc.SOName) {
		return false
	}
	if r.ChangeKind != ChangeKindAll && r.ChangeKind != d.ChangeKind {
		return false
	}
	if r.Name != "" && r.Name != d.Name && r.Name != d.QualifiedName {
		return false
	}
	if r.NameRegexp != nil && !r.NameRegexp.MatchString(d.QualifiedName) && !r.NameRegexp.MatchString(d.Name) {
		return false
	}
	if r.NameNotRegexp != nil && (r.NameNotRegexp.MatchString(d.QualifiedName) || r.NameNotRegexp.MatchString(d.Name)) {
		return false
	}
	if r.ReturnTypeName != "" && r.ReturnTypeName != d.ReturnTypeName {
		return false
	}
	if r.ReturnTypeRegexp != nil && !r.ReturnTypeRegexp.MatchString(d.ReturnTypeName) {
		return false
	}
	for _, p := range r.Parameters {
		if p.Index < 0 || p.Index >= len(d.Parameters) || !p.matches(d.Parameters[p.Index]) {
			return false
		}
	}
	if !symbolFilterMatches(r.SymbolName, r.SymbolNameRegexp, r.SymbolVersion, r.SymbolVersionRegexp, d.SymbolName, d.SymbolVersion) {
		return false
	}
	return aliasesSatisfy(r.AllowOtherAliases, r.NameRegexp, r.SymbolNameRegexp, d.SymbolName, d.AliasNames)
}

// aliasesSatisfy implements spec.md 8 invariant 4 ("alias transparency"):
// when allow_other_aliases is false and a name-matching rule matches a
// symbol's primary name, it only actually matches if every alias also
// matches the same regex.
func aliasesSatisfy(allowOtherAliases bool, nameRegexp, symbolNameRegexp *lazyRegexp, primary string, aliases []string) bool {
	if allowOtherAliases {
		return true
	}
	re := symbolNameRegexp
	if re == nil {
		re = nameRegexp
	}
	if re == nil {
		return true
	}
	for _, alias := range aliases {
		if alias == primary {
			continue
		}
		if !re.MatchString(alias) {
			return false
		}
	}
	return true
}

// SuppressesVariable implements the suppresses() contract for a var_diff,
// per spec.md 4.6.
func (s *Set) SuppressesVariable(bc BinaryContext, d VariableDescriptor) bool {
	for _, r := range s.VariableRules {
		if variableRuleMatches(r, bc, d) {
			return true
		}
	}
	return false
}

func variableRuleMatches(r VariableRule, bc BinaryContext, d VariableDescriptor) bool {
	if !r.matchesBinary(bc.FileName, bc.SOName) {
		return false
	}
	if r.ChangeKind != ChangeKindAll && r.ChangeKind != d.ChangeKind {
		return false
	}
	if r.Name != "" && r.Name != d.Name && r.Name != d.QualifiedName {
		return false
	}
	if r.NameRegexp != nil && !r.NameRegexp.MatchString(d.QualifiedName) && !r.NameRegexp.MatchString(d.Name) {
		return false
	}
	if r.NameNotRegexp != nil && (r.NameNotRegexp.MatchString(d.QualifiedName) || r.NameNotRegexp.MatchString(d.Name)) {
		return false
	}
	if r.TypeName != "" && r.TypeName != d.TypeName {
		return false
	}
	if r.TypeNameRegexp != nil && !r.TypeNameRegexp.MatchString(d.TypeName) {
		return false
	}
	return symbolFilterMatches(r.SymbolName, r.SymbolNameRegexp, r.SymbolVersion, r.SymbolVersionRegexp, d.SymbolName, d.SymbolVersion)
}

func symbolFilterMatches(name string, nameRe *lazyRegexp, version string, versionRe *lazyRegexp, gotName, gotVersion string) bool {
	if name != "" && name != gotName {
		return false
	}
	if nameRe != nil && !nameRe.MatchString(gotName) {
		return false
	}
	if version != "" && version != gotVersion {
		return false
	}
	if versionRe != nil && !versionRe.MatchString(gotVersion) {
		return false
	}
	return true
}

// SuppressesFile reports whether fileName should be skipped entirely,
// per spec.md 4.6's [suppress_file].
func (s *Set) SuppressesFile(bc BinaryContext) bool {
	for _, r := range s.FileRules {
		if r.matchesBinary(bc.FileName, bc.SOName) {
			return true
		}
	}
	return false
}
