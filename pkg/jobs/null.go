package jobs

import "context"

// NullStore discards jobs. Get always reports NOT_FOUND.
type NullStore struct{}

func (NullStore) Record(context.Context, *Job) error { return nil }

func (NullStore) Get(_ context.Context, id string) (*Job, error) { return nil, notFound(id) }

func (NullStore) List(context.Context, int) ([]*Job, error) { return nil, nil }

func (NullStore) Delete(context.Context, string) error { return nil }

func (NullStore) Close() error { return nil }

var _ Store = NullStore{}
