package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	jobA := &stubJob{name: "outbox-retention"}
	jobB := &stubJob{name: "cart-abandon"}
	registry, err := NewRegistry(jobA, nil, jobB)
	require.NoError(t, err)

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Same(t, jobA, jobs[0])
	assert.Same(t, jobB, jobs[1])

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0], "internal slice leaked")

	assert.Equal(t, []string{"cart-abandon", "outbox-retention"}, registry.Names())
}

func TestRegistryRejectsDuplicateAndEmptyNames(t *testing.T) {
	_, err := NewRegistry(&stubJob{name: "cart-abandon"}, &stubJob{name: "cart-abandon"})
	assert.ErrorContains(t, err, "registered twice")

	registry, err := NewRegistry()
	require.NoError(t, err)
	assert.Error(t, registry.Register(&stubJob{}))
}

func TestRegistryLookup(t *testing.T) {
	job := &stubJob{name: "cart-abandon"}
	registry, err := NewRegistry(job)
	require.NoError(t, err)

	found, ok := registry.Lookup("cart-abandon")
	require.True(t, ok)
	assert.Same(t, job, found)

	_, ok = registry.Lookup("missing")
	assert.False(t, ok)
}
