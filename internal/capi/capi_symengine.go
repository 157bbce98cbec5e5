//go:build cgo && symengine

package capi

/*
#cgo LDFLAGS: -lsymengine -lstdc++ -lgmp
#include <stdlib.h>
#include <symengine/cwrapper.h>
*/
import "C"

import (
	"sort"
	"unsafe"
)

// Engine names the engine behind this build.
const Engine = "symengine"

// Basic is a handle to one expression.
type Basic struct{ ptr *C.basic_struct }

// MapBasicBasic is a handle to an expression-to-expression map.
type MapBasicBasic struct{ ptr *C.CMapBasicBasic }

func (b *Basic) live() {
	if b == nil || b.ptr == nil {
		panic("capi: use of freed or nil basic")
	}
}

func (m *MapBasicBasic) live() {
	if m == nil || m.ptr == nil {
		panic("capi: use of freed or nil map")
	}
}

// BasicNew allocates an expression handle holding the integer 0.
func BasicNew() *Basic {
	p := C.basic_new_heap()
	if p == nil {
		panic("capi: basic_new_heap: out of memory")
	}

	// A fresh heap basic holds a null reference; give it a value so that
	// every live handle can be printed and compared.
	C.integer_set_si(p, 0)

	return &Basic{ptr: p}
}

// BasicFree releases b. Freeing a handle twice panics.
func BasicFree(b *Basic) {
	b.live()

	C.basic_free_heap(b.ptr)
	b.ptr = nil
}

// BasicAssign copies the expression held by src into dst.
func BasicAssign(dst, src *Basic) Status {
	dst.live()
	src.live()

	return Status(C.basic_assign(dst.ptr, src.ptr))
}

// BasicParse parses s into b. On failure b is unchanged.
func BasicParse(b *Basic, s string) Status {
	b.live()

	cs := C.CString(s)
	defer C.free(unsafe.Pointer(cs))

	return Status(C.basic_parse(b.ptr, cs))
}

// SymbolSet stores the symbol name in b.
func SymbolSet(b *Basic, name string) Status {
	b.live()

	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))

	return Status(C.symbol_set(b.ptr, cs))
}

// IntegerSetSI stores the integer v in b.
func IntegerSetSI(b *Basic, v int64) Status {
	b.live()

	return Status(C.integer_set_si(b.ptr, C.long(v)))
}

// RealDoubleSetD stores the double-precision number v in b.
func RealDoubleSetD(b *Basic, v float64) Status {
	b.live()

	return Status(C.real_double_set_d(b.ptr, C.double(v)))
}

// BasicStr returns the printed form of b.
func BasicStr(b *Basic) string {
	b.live()

	return basicStr(b.ptr)
}

func basicStr(p *C.basic_struct) string {
	cs := C.basic_str(p)
	defer C.basic_str_free(cs)

	return C.GoString(cs)
}

// BasicEq reports whether a and b hold structurally equal expressions.
func BasicEq(a, b *Basic) bool {
	a.live()
	b.live()

	return C.basic_eq(a.ptr, b.ptr) != 0
}

// BasicFreeSymbols returns the sorted names of the symbols in b.
func BasicFreeSymbols(b *Basic) ([]string, Status) {
	b.live()

	set := C.setbasic_new()
	defer C.setbasic_free(set)

	if s := Status(C.basic_free_symbols(b.ptr, set)); s != StatusOK {
		return nil, s
	}

	tmp := C.basic_new_heap()
	defer C.basic_free_heap(tmp)

	n := int(C.setbasic_size(set))
	names := make([]string, 0, n)

	for i := range n {
		C.setbasic_get(set, C.int(i), tmp)
		names = append(names, basicStr(tmp))
	}

	sort.Strings(names)

	return names, StatusOK
}

// BasicSubs stores in dst the result of substituting every key of m found
// in src with its mapped value. Substitution is simultaneous.
func BasicSubs(dst, src *Basic, m *MapBasicBasic) Status {
	dst.live()
	src.live()
	m.live()

	return Status(C.basic_subs(dst.ptr, src.ptr, m.ptr))
}

// MapBasicBasicNew allocates an empty map handle.
func MapBasicBasicNew() *MapBasicBasic {
	p := C.mapbasicbasic_new()
	if p == nil {
		panic("capi: mapbasicbasic_new: out of memory")
	}

	return &MapBasicBasic{ptr: p}
}

// MapBasicBasicFree releases m. Freeing a handle twice panics.
func MapBasicBasicFree(m *MapBasicBasic) {
	m.live()

	C.mapbasicbasic_free(m.ptr)
	m.ptr = nil
}

// MapBasicBasicInsert maps key to the current value of mapped, replacing
// any existing entry for an equal key.
func MapBasicBasicInsert(m *MapBasicBasic, key, mapped *Basic) {
	m.live()
	key.live()
	mapped.live()

	C.mapbasicbasic_insert(m.ptr, key.ptr, mapped.ptr)
}

// MapBasicBasicSize returns the number of entries in m.
func MapBasicBasicSize(m *MapBasicBasic) int {
	m.live()

	return int(C.mapbasicbasic_size(m.ptr))
}
