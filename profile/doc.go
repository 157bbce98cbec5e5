// Package profile provides optional runtime profiling for symsubst.
//
// # Overview
//
// This package integrates [github.com/pkg/profile] with conditional
// compilation. Profiling must be enabled at build time with the "pprof" build
// tag; without it every operation is a no-op:
//
//	go build -tags pprof .
//
// # Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// [Modes] returns the list available in the current build.
//
// # Usage
//
//	ctl := profile.New(
//		profile.WithMode("cpu"),
//		profile.WithPath("/tmp/profiles"),
//	).Start()
//	defer ctl.Stop()
//
// From the command line:
//
//	symsubst --pprof-mode=cpu eval 'a*b + 10' -s a=3 -s b=-4
//
// The default output directory is $XDG_CACHE_HOME/symsubst/pprof. Analyze the
// result with go tool pprof:
//
//	go tool pprof -http=: ~/.cache/symsubst/pprof/cpu.pprof
//
// With the pprof tag the package also imports [net/http/pprof], registering
// its handlers on [net/http.DefaultServeMux].
package profile
