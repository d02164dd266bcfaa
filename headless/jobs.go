package headless

import (
	"reflect"
	"unsafe"

	"modernc.org/libc"
	lib "modernc.org/libquickjs"
	"modernc.org/quickjs"
)

// runMicrotasks executes every pending promise job of vm and reports how many
// ran. The quickjs wrapper never drains the job queue itself, so promise
// reactions would otherwise never fire.
func runMicrotasks(vm *quickjs.VM) int {
	rt, tls, ok := vmRuntime(vm)
	if !ok {
		return 0
	}
	n := 0
	for lib.XJS_ExecutePendingJob(tls, rt, 0) > 0 {
		n++
	}
	return n
}

// vmRuntime reads the unexported C runtime and TLS out of a VM.
//
// Layout as of modernc.org/quickjs v0.17.1:
//
//	type VM struct {
//	    ...
//	    runtime *runtime
//	}
//	type runtime struct {
//	    cRuntime uintptr
//	    tls      *libc.TLS
//	}
func vmRuntime(vm *quickjs.VM) (uintptr, *libc.TLS, bool) {
	field := reflect.ValueOf(vm).Elem().FieldByName("runtime")
	if !field.IsValid() || field.IsNil() {
		return 0, nil, false
	}
	rt := reflect.NewAt(field.Type().Elem(), unsafe.Pointer(field.Pointer())).Elem()

	c := rt.FieldByName("cRuntime")
	tls := rt.FieldByName("tls")
	if !c.IsValid() || !tls.IsValid() || tls.IsNil() {
		return 0, nil, false
	}
	return uintptr(c.Uint()), (*libc.TLS)(unsafe.Pointer(tls.Pointer())), true
}
