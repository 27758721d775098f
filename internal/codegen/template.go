package codegen

// header opens every generated program. The import set is exactly what the
// prelude uses, so it is valid regardless of which operations the
// expression touches.
const header = `// Code generated by pipet; do not edit.
package main

import (
	"bufio"
	"fmt"
	"os"
)

`

// prelude is the inline pipeline vocabulary available to expressions. It is
// emitted in full on every generation so the program is self-contained and
// the generated bytes stay a pure function of (expression, mode).
//
// Pipes are lazy: nothing is read or computed until the driver (or a
// terminal operation) pulls values, and a consumer returning false stops
// the upstream immediately. That is what makes Take over an unbounded
// input terminate.
const prelude = `type Pipe[T any] struct {
	seq func(yield func(T) bool)
}

func pipe[T any](items ...T) Pipe[T] {
	return Pipe[T]{seq: func(yield func(T) bool) {
		for _, v := range items {
			if !yield(v) {
				return
			}
		}
	}}
}

func stdinLines() Pipe[string] {
	return Pipe[string]{seq: func(yield func(string) bool) {
		sc := bufio.NewScanner(os.Stdin)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			if !yield(sc.Text()) {
				return
			}
		}
	}}
}

func naturals() Pipe[int] {
	return Pipe[int]{seq: func(yield func(int) bool) {
		for i := 0; ; i++ {
			if !yield(i) {
				return
			}
		}
	}}
}

func (p Pipe[T]) Filter(keep func(T) bool) Pipe[T] {
	return Pipe[T]{seq: func(yield func(T) bool) {
		p.seq(func(v T) bool {
			if keep(v) {
				return yield(v)
			}
			return true
		})
	}}
}

func (p Pipe[T]) Map(fn func(T) T) Pipe[T] {
	return Pipe[T]{seq: func(yield func(T) bool) {
		p.seq(func(v T) bool {
			return yield(fn(v))
		})
	}}
}

func (p Pipe[T]) Take(n int) Pipe[T] {
	return Pipe[T]{seq: func(yield func(T) bool) {
		if n <= 0 {
			return
		}
		seen := 0
		p.seq(func(v T) bool {
			if !yield(v) {
				return false
			}
			seen++
			return seen < n
		})
	}}
}

func (p Pipe[T]) Drop(n int) Pipe[T] {
	return Pipe[T]{seq: func(yield func(T) bool) {
		seen := 0
		p.seq(func(v T) bool {
			if seen < n {
				seen++
				return true
			}
			return yield(v)
		})
	}}
}

func (p Pipe[T]) Count() int {
	n := 0
	p.seq(func(T) bool {
		n++
		return true
	})
	return n
}

func (p Pipe[T]) First() T {
	var first T
	p.seq(func(v T) bool {
		first = v
		return false
	})
	return first
}

func (p Pipe[T]) Any(pred func(T) bool) bool {
	found := false
	p.seq(func(v T) bool {
		if pred(v) {
			found = true
			return false
		}
		return true
	})
	return found
}

func (p Pipe[T]) All(pred func(T) bool) bool {
	ok := true
	p.seq(func(v T) bool {
		if !pred(v) {
			ok = false
			return false
		}
		return true
	})
	return ok
}

func (p Pipe[T]) Reduce(fn func(T, T) T) T {
	var acc T
	first := true
	p.seq(func(v T) bool {
		if first {
			acc = v
			first = false
		} else {
			acc = fn(acc, v)
		}
		return true
	})
	return acc
}

func (p Pipe[T]) Sum() T {
	var acc T
	p.seq(func(v T) bool {
		switch x := any(v).(type) {
		case int:
			acc = any(any(acc).(int) + x).(T)
		case float64:
			acc = any(any(acc).(float64) + x).(T)
		case string:
			acc = any(any(acc).(string) + x).(T)
		}
		return true
	})
	return acc
}

func (p Pipe[T]) ToSlice() []T {
	var out []T
	p.seq(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}

func emitEach[T any](p Pipe[T]) {
	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	p.seq(func(v T) bool {
		fmt.Fprintln(w, v)
		return true
	})
}

func emitOne(v any) {
	fmt.Println(v)
}

`
