package provider

import (
	"context"
	"errors"
	"fmt"
)

// Attempt is one tier of a fallback chain.
type Attempt[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Failure records why a tier was passed over.
type Failure struct {
	Tier string
	Err  error
}

func (f Failure) Error() string { return f.Tier + ": " + f.Err.Error() }
func (f Failure) Unwrap() error { return f.Err }

// Outcome is the result of running a chain. Index is -1 when every tier failed.
type Outcome[T any] struct {
	Value    T
	Index    int
	Tier     string
	Failures []Failure
}

func (o Outcome[T]) OK() bool { return o.Index >= 0 }

// Err joins the tier failures, or returns nil on success.
func (o Outcome[T]) Err() error {
	if o.OK() {
		return nil
	}
	errs := make([]error, len(o.Failures))
	for i, f := range o.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// FirstSuccess runs attempts in order and stops at the first one without an error.
// Panics inside an attempt are converted into failures.
func FirstSuccess[T any](ctx context.Context, attempts ...Attempt[T]) Outcome[T] {
	out := Outcome[T]{Index: -1}
	for i, a := range attempts {
		v, err := runAttempt(ctx, a)
		if err != nil {
			out.Failures = append(out.Failures, Failure{Tier: a.Name, Err: err})
			continue
		}
		out.Value, out.Index, out.Tier = v, i, a.Name
		return out
	}
	return out
}

func runAttempt[T any](ctx context.Context, a Attempt[T]) (v T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	if a.Run == nil {
		return v, ErrNotConfigured
	}
	return a.Run(ctx)
}
