// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

// Package suppression implements component C6: typed suppression rules
// parsed from an ini-flavored file, and the suppresses() evaluation
// contract the diff engine consults before reporting a change.
package suppression

// ChangeKind restricts a function_suppression/variable_suppression to a
// particular class of change, per spec.md 4.6/6.2.
type ChangeKind int

// Recognized change_kind values.
const (
	ChangeKindAll ChangeKind = iota
	ChangeKindFunctionSubtypeChange
	ChangeKindAddedFunction
	ChangeKindDeletedFunction
	ChangeKindVariableSubtypeChange
	ChangeKindAddedVariable
	ChangeKindDeletedVariable
)

// TypeKindFilter restricts a type_suppression to a type_kind, per
// spec.md 6.2.
type TypeKindFilter int

// Recognized type_kind values. KindAny means the key was absent.
const (
	KindAny TypeKindFilter = iota
	KindClass
	KindStruct
	KindUnion
	KindEnum
	KindArray
	KindTypedef
	KindBuiltin
)

// ReachKind restricts a type_suppression to how the type is reached from
// the diff root, per spec.md 6.2's accessed_through key.
type ReachKind int

// Recognized accessed_through values. ReachAny means the key was absent.
const (
	ReachAny ReachKind = iota
	ReachDirect
	ReachPointer
	ReachReference
	ReachReferenceOrPointer
)

// boundaryKind discriminates a data-member insertion range boundary.
type boundaryKind int

const (
	boundaryLiteral boundaryKind = iota
	boundaryEnd
	boundaryOffsetOf
	boundaryOffsetAfter
)

// Boundary is one endpoint of a has_data_member_inserted_* range, per
// spec.md 4.6: either a literal bit offset, the sentinel "end", or a
// parsed offset_of(member)/offset_after(member) expression evaluated
// against the first class in a diff pair.
type Boundary struct {
	kind    boundaryKind
	literal int64
	member  string
}

// Resolve evaluates b against a class's member-name to bit-offset table
// and its total size in bits (used for the "end" sentinel and for
// offset_after, which adds the member's own size).
func (b Boundary) Resolve(offsets map[string]uint64, sizes map[string]uint64, classSizeBits uint64) (uint64, bool) {
	switch b.kind {
	case boundaryLiteral:
		if b.literal < 0 {
			return classSizeBits, true
		}
		return uint64(b.literal), true
	case boundaryEnd:
		return classSizeBits, true
	case boundaryOffsetOf:
		off, ok := offsets[b.member]
		return off, ok
	case boundaryOffsetAfter:
		off, ok := offsets[b.member]
		if !ok {
			return 0, false
		}
		return off + sizes[b.member], true
	default:
		return 0, false
	}
}

// DataMemberRange is one has_data_member_inserted_at/_between entry.
type DataMemberRange struct {
	Begin Boundary
	End   Boundary
	// Point is true for has_data_member_inserted_at, where a single
	// boundary is given and the rule matches an exact offset rather than
	// a half-open interval.
	Point bool
}

// binaryFilter holds the four binary-identity filters every suppression
// subtype accepts, per spec.md 4.6.
type binaryFilter struct {
	fileNameRegexp    *lazyRegexp
	fileNameNotRegexp *lazyRegexp
	sonameRegexp      *lazyRegexp
	sonameNotRegexp   *lazyRegexp
}

func (f binaryFilter) matchesBinary(fileName, soName string) bool {
	if f.fileNameRegexp != nil && !f.fileNameRegexp.MatchString(fileName) {
		return false
	}
	if f.fileNameNotRegexp != nil && f.fileNameNotRegexp.MatchString(fileName) {
		return false
	}
	if f.sonameRegexp != nil && !f.sonameRegexp.MatchString(soName) {
		return false
	}
	if f.sonameNotRegexp != nil && f.sonameNotRegexp.MatchString(soName) {
		return false
	}
	return true
}

// TypeRule is a parsed [suppress_type] section.
type TypeRule struct {
	binaryFilter
	Label string

	Name         string
	NameRegexp   *lazyRegexp
	NameNotRegexp *lazyRegexp

	TypeKind        TypeKindFilter
	AccessedThrough ReachKind

	SourceLocationNotIn     []string
	SourceLocationNotRegexp *lazyRegexp

	DataMemberNamedRegexp *lazyRegexp

	InsertRanges []DataMemberRange
}

// FunctionRule is a parsed [suppress_function] section.
type FunctionRule struct {
	binaryFilter
	Label string

	ChangeKind ChangeKind

	Name          string
	NameRegexp    *lazyRegexp
	NameNotRegexp *lazyRegexp

	ReturnTypeName   string
	ReturnTypeRegexp *lazyRegexp

	Parameters []ParamSpec

	SymbolName          string
	SymbolNameRegexp    *lazyRegexp
	SymbolVersion       string
	SymbolVersionRegexp *lazyRegexp

	AllowOtherAliases bool
}

// ParamSpec is one repeatable `parameter` key: '<index> <type-name-or-/regex/>'.
type ParamSpec struct {
	Index    int
	TypeName string
	Regexp   *lazyRegexp // non-nil when the spec was given as /regex/
}

func (p ParamSpec) matches(typeName string) bool {
	if p.Regexp != nil {
		return p.Regexp.MatchString(typeName)
	}
	return p.TypeName == typeName
}

// VariableRule is a parsed [suppress_variable] section.
type VariableRule struct {
	binaryFilter
	Label string

	ChangeKind ChangeKind

	Name          string
	NameRegexp    *lazyRegexp
	NameNotRegexp *lazyRegexp

	TypeName       string
	TypeNameRegexp *lazyRegexp

	SymbolName          string
	SymbolNameRegexp    *lazyRegexp
	SymbolVersion       string
	SymbolVersionRegexp *lazyRegexp
}

// FileRule is a parsed [suppress_file] section.
type FileRule struct {
	binaryFilter
	Label string
}
