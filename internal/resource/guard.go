package resource

import "context"

// guardedWrite runs one read-modify-write cycle on p. Unless create is
// true, the current content is read first and its version token guards
// the subsequent conditional write; for the create path the read is
// skipped entirely and the write carries no token. The read and the
// write are two separate round trips, so another writer can intervene
// between them; the backend then rejects the stale token and the call
// surfaces apperr.ErrConflict.
func (s *Service) guardedWrite(ctx context.Context, p string, create bool, mutate func(current []byte) ([]byte, error)) (bool, error) {
	var current []byte
	var vtoken string
	if !create {
		var err error
		current, vtoken, err = s.store.Read(ctx, p)
		if err != nil {
			return false, err
		}
	}
	next, err := mutate(current)
	if err != nil {
		return false, err
	}
	return s.store.Write(ctx, p, next, vtoken)
}

// guardedDelete reads the current content for its version token, issues
// the conditional delete, and returns the content that was removed.
func (s *Service) guardedDelete(ctx context.Context, p string) ([]byte, error) {
	current, vtoken, err := s.store.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.store.Delete(ctx, p, vtoken); err != nil {
		return nil, err
	}
	return current, nil
}
