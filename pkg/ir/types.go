// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package ir

// TypeKind discriminates the concrete variant stored behind a TypeHandle.
// Design Notes (spec.md 9) map the source's deep virtual type hierarchy
// onto a tagged variant with capability-based accessors (AsXxx methods
// on Environment) rather than a Go interface hierarchy, since every
// variant needs the same baseType fields canonicalization depends on.
type TypeKind int

// Recognized type kinds, per spec.md 3 "Type entity".
const (
	KindTypeDecl TypeKind = iota
	KindQualified
	KindPointer
	KindReference
	KindArray
	KindFunction
	KindMethod
	KindEnum
	KindTypedef
	KindClassOrUnion
)

func (k TypeKind) String() string {
	switch k {
	case KindTypeDecl:
		return "type_decl"
	case KindQualified:
		return "qualified_type"
	case KindPointer:
		return "pointer_type"
	case KindReference:
		return "reference_type"
	case KindArray:
		return "array_type"
	case KindFunction:
		return "function_type"
	case KindMethod:
		return "method_type"
	case KindEnum:
		return "enum_type"
	case KindTypedef:
		return "typedef"
	case KindClassOrUnion:
		return "class_or_union"
	default:
		return "unknown_type"
	}
}

// baseType holds the fields every type variant carries, per spec.md 3
// "Type entity (abstract)".
type baseType struct {
	Kind      TypeKind
	SizeBits  uint64
	AlignBits uint64
	Canonical TypeHandle
	Origin    DieOrigin
}

// CVQualifiers is a bitset of {const, volatile, restrict}.
type CVQualifiers uint8

// Individual CV bits.
const (
	CVConst CVQualifiers = 1 << iota
	CVVolatile
	CVRestrict
)

// AccessSpecifier is a class/union member's access.
type AccessSpecifier int

// Recognized accesses.
const (
	AccessPublic AccessSpecifier = iota
	AccessProtected
	AccessPrivate
)

// TypeDecl is a builtin type (spec.md 3: "type_decl (builtin)").
type TypeDecl struct {
	Name      string
	IsBuiltin bool
}

// QualifiedType adds a CV bitset over an underlying type.
type QualifiedType struct {
	Underlying TypeHandle
	CV         CVQualifiers
}

// PointerType points to another type.
type PointerType struct {
	Pointee TypeHandle
}

// ReferenceType references another type; IsLValue distinguishes C++
// lvalue references from rvalue references.
type ReferenceType struct {
	Pointee  TypeHandle
	IsLValue bool
}

// ArraySubrange is one dimension of an array_type.
type ArraySubrange struct {
	LowerBound    int64
	UpperBound    int64
	HasUpperBound bool
}

// ArrayType is an element type plus an ordered list of subranges.
type ArrayType struct {
	Element    TypeHandle
	Subranges  []ArraySubrange
}

// FunctionParam is one parameter of a function_type.
type FunctionParam struct {
	Type        TypeHandle
	Name        string
	IsVariadic  bool
	IsArtificial bool
}

// FunctionType is a return type plus an ordered parameter list.
type FunctionType struct {
	Return TypeHandle
	Params []FunctionParam
}

// MethodType is a FunctionType bound to an owning class.
type MethodType struct {
	FunctionType
	Class TypeHandle
}

// Enumerator is one name/value pair of an enum_type.
type Enumerator struct {
	Name  string
	Value int64
}

// EnumType is an underlying integer type plus ordered enumerators.
type EnumType struct {
	Underlying  TypeHandle
	Enumerators []Enumerator
}

// Typedef names an underlying type.
type Typedef struct {
	Name       string
	Underlying TypeHandle
}

// BaseSpecifier is one base class of a ClassOrUnion.
type BaseSpecifier struct {
	Base      TypeHandle
	Access    AccessSpecifier
	OffsetBits uint64
	IsVirtual bool
}

// DataMember is one non-static-or-static data member of a ClassOrUnion.
type DataMember struct {
	Var              DeclHandle
	Access           AccessSpecifier
	LayoutOffsetBits uint64
	IsStatic         bool
	IsLaidOut        bool
}

// MemberFunction is one member function of a ClassOrUnion.
type MemberFunction struct {
	Fn           DeclHandle
	Access       AccessSpecifier
	IsVirtual    bool
	VtableOffset int64
	IsCtor       bool
	IsDtor       bool
	IsConst      bool
	IsStatic     bool
}

// ClassOrUnion is spec.md 3's "Class/union record".
type ClassOrUnion struct {
	Name              string
	IsStruct          bool
	IsUnion           bool
	IsAnonymous       bool
	IsDeclarationOnly bool

	// DefinitionOfDeclaration is set on a declaration-only class once
	// resolveDeclarationOnlyClasses finds a real definition sharing its
	// qualified name (spec.md 3 invariant).
	DefinitionOfDeclaration TypeHandle

	Bases           []BaseSpecifier
	DataMembers     []DataMember
	MemberFunctions []MemberFunction
	MemberTypes     []TypeHandle

	QualifiedName string
}

// NewTypeDecl installs a builtin type_decl.
func (env *Environment) NewTypeDecl(name string, sizeBits, alignBits uint64, origin DieOrigin) TypeHandle {
	return env.newType(KindTypeDecl, baseType{SizeBits: sizeBits, AlignBits: alignBits, Origin: origin}, &TypeDecl{Name: name, IsBuiltin: true})
}

// NewQualifiedType installs a qualified_type. Per spec.md 4.5's
// qualified-type contract, a "const reference" is never constructed:
// callers strip CVConst before calling this when Underlying is itself a
// reference_type.
func (env *Environment) NewQualifiedType(underlying TypeHandle, cv CVQualifiers, origin DieOrigin) TypeHandle {
	base := env.typeSlot(underlying).base
	return env.newType(KindQualified, baseType{SizeBits: base.SizeBits, AlignBits: base.AlignBits, Origin: origin}, &QualifiedType{Underlying: underlying, CV: cv})
}

// NewPointerType installs a pointer_type.
func (env *Environment) NewPointerType(pointee TypeHandle, sizeBits, alignBits uint64, origin DieOrigin) TypeHandle {
	return env.newType(KindPointer, baseType{SizeBits: sizeBits, AlignBits: alignBits, Origin: origin}, &PointerType{Pointee: pointee})
}

// NewReferenceType installs a reference_type.
func (env *Environment) NewReferenceType(pointee TypeHandle, isLValue bool, sizeBits, alignBits uint64, origin DieOrigin) TypeHandle {
	return env.newType(KindReference, baseType{SizeBits: sizeBits, AlignBits: alignBits, Origin: origin}, &ReferenceType{Pointee: pointee, IsLValue: isLValue})
}

// NewArrayType installs an array_type.
func (env *Environment) NewArrayType(element TypeHandle, subranges []ArraySubrange, sizeBits, alignBits uint64, origin DieOrigin) TypeHandle {
	return env.newType(KindArray, baseType{SizeBits: sizeBits, AlignBits: alignBits, Origin: origin}, &ArrayType{Element: element, Subranges: subranges})
}

// NewFunctionType installs a function_type.
func (env *Environment) NewFunctionType(ret TypeHandle, params []FunctionParam, addrSizeBits uint64, origin DieOrigin) TypeHandle {
	return env.newType(KindFunction, baseType{SizeBits: 0, AlignBits: addrSizeBits, Origin: origin}, &FunctionType{Return: ret, Params: params})
}

// NewMethodType installs a method_type.
func (env *Environment) NewMethodType(ret TypeHandle, params []FunctionParam, class TypeHandle, addrSizeBits uint64, origin DieOrigin) TypeHandle {
	ft := FunctionType{Return: ret, Params: params}
	return env.newType(KindMethod, baseType{SizeBits: 0, AlignBits: addrSizeBits, Origin: origin}, &MethodType{FunctionType: ft, Class: class})
}

// NewEnumType installs an enum_type.
func (env *Environment) NewEnumType(underlying TypeHandle, enumerators []Enumerator, sizeBits, alignBits uint64, origin DieOrigin) TypeHandle {
	return env.newType(KindEnum, baseType{SizeBits: sizeBits, AlignBits: alignBits, Origin: origin}, &EnumType{Underlying: underlying, Enumerators: enumerators})
}

// NewTypedef installs a typedef.
func (env *Environment) NewTypedef(name string, underlying TypeHandle, origin DieOrigin) TypeHandle {
	base := env.typeSlot(underlying).base
	return env.newType(KindTypedef, baseType{SizeBits: base.SizeBits, AlignBits: base.AlignBits, Origin: origin}, &Typedef{Name: name, Underlying: underlying})
}

// NewClassOrUnion installs an (initially empty) class_or_union; callers
// append to its Bases/DataMembers/MemberFunctions slices (through
// AsClassOrUnion) as the DWARF builder walks the class DIE's children.
func (env *Environment) NewClassOrUnion(c ClassOrUnion, sizeBits, alignBits uint64, origin DieOrigin) TypeHandle {
	return env.newType(KindClassOrUnion, baseType{SizeBits: sizeBits, AlignBits: alignBits, Origin: origin}, &c)
}

// TypeKindOf returns h's discriminant.
func (env *Environment) TypeKindOf(h TypeHandle) TypeKind { return env.typeSlot(h).kind }

// TypeSizeBits returns h's size in bits.
func (env *Environment) TypeSizeBits(h TypeHandle) uint64 { return env.typeSlot(h).base.SizeBits }

// SetTypeSizeBits updates h's size in bits; used while a class's layout
// is still being assembled (spec.md 3: "Class sizes monotonically
// include all laid-out non-static data members").
func (env *Environment) SetTypeSizeBits(h TypeHandle, bits uint64) {
	env.typeSlot(h).base.SizeBits = bits
}

// TypeAlignBits returns h's alignment in bits.
func (env *Environment) TypeAlignBits(h TypeHandle) uint64 { return env.typeSlot(h).base.AlignBits }

// TypeOrigin returns h's DIE origin metadata.
func (env *Environment) TypeOrigin(h TypeHandle) DieOrigin { return env.typeSlot(h).base.Origin }

// CanonicalOf returns h's canonical-type handle, or NilTypeHandle if h
// has not yet been canonicalized.
func (env *Environment) CanonicalOf(h TypeHandle) TypeHandle { return env.typeSlot(h).base.Canonical }

// AsTypeDecl returns h's payload if it is a type_decl.
func (env *Environment) AsTypeDecl(h TypeHandle) (*TypeDecl, bool) {
	return asType[*TypeDecl](env, h, KindTypeDecl)
}

// AsQualifiedType returns h's payload if it is a qualified_type.
func (env *Environment) AsQualifiedType(h TypeHandle) (*QualifiedType, bool) {
	return asType[*QualifiedType](env, h, KindQualified)
}

// AsPointerType returns h's payload if it is a pointer_type.
func (env *Environment) AsPointerType(h TypeHandle) (*PointerType, bool) {
	return asType[*PointerType](env, h, KindPointer)
}

// AsReferenceType returns h's payload if it is a reference_type.
func (env *Environment) AsReferenceType(h TypeHandle) (*ReferenceType, bool) {
	return asType[*ReferenceType](env, h, KindReference)
}

// AsArrayType returns h's payload if it is an array_type.
func (env *Environment) AsArrayType(h TypeHandle) (*ArrayType, bool) {
	return asType[*ArrayType](env, h, KindArray)
}

// AsFunctionType returns h's payload if it is a function_type.
func (env *Environment) AsFunctionType(h TypeHandle) (*FunctionType, bool) {
	return asType[*FunctionType](env, h, KindFunction)
}

// AsMethodType returns h's payload if it is a method_type.
func (env *Environment) AsMethodType(h TypeHandle) (*MethodType, bool) {
	return asType[*MethodType](env, h, KindMethod)
}

// AsEnumType returns h's payload if it is an enum_type.
func (env *Environment) AsEnumType(h TypeHandle) (*EnumType, bool) {
	return asType[*EnumType](env, h, KindEnum)
}

// AsTypedef returns h's payload if it is a typedef.
func (env *Environment) AsTypedef(h TypeHandle) (*Typedef, bool) {
	return asType[*Typedef](env, h, KindTypedef)
}

// AsClassOrUnion returns h's payload if it is a class_or_union.
func (env *Environment) AsClassOrUnion(h TypeHandle) (*ClassOrUnion, bool) {
	return asType[*ClassOrUnion](env, h, KindClassOrUnion)
}

func asType[T any](env *Environment, h TypeHandle, want TypeKind) (T, bool) {
	var zero T
	if !h.Valid() {
		return zero, false
	}
	slot := env.typeSlot(h)
	if slot.kind != want {
		return zero, false
	}
	return slot.data.(T), true
}
