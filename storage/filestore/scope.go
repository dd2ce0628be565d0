package filestore

import (
	"context"
	"errors"
)

// With opens namespace, runs fn and closes the store on every exit path, including
// a panic in fn. Errors from fn and from Close are both returned; on a panic the
// Close error is logged before the panic resumes.
func With(ctx context.Context, namespace string, fn func(s *Store) error, opts ...Option) (err error) {
	s, err := Open(ctx, namespace, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if cerr := s.Close(); cerr != nil {
				s.logf("closing namespace %s after panic: %v", namespace, cerr)
			}
			panic(r)
		}
		err = errors.Join(err, s.Close())
	}()
	return fn(s)
}
