package testutil

import (
	"sync"
	"testing"

	"github.com/kbukum/dikit/di"
)

// ResourceRecorder captures the order in which resources are created and
// released, for asserting scope teardown behavior. Safe for concurrent use.
type ResourceRecorder struct {
	mu       sync.Mutex
	created  []string
	released []string
}

// NewResourceRecorder creates an empty recorder.
func NewResourceRecorder() *ResourceRecorder {
	return &ResourceRecorder{}
}

// Provider returns a resource provider for iface whose creation and release
// are recorded under the interface name.
func (r *ResourceRecorder) Provider(iface di.Interface, scope di.Scope, opts ...di.ProviderOption) *di.Provider {
	name := iface.String()
	return di.MustProvider(iface, scope, di.ResourceFactory(func(...any) (any, di.ReleaseFunc, error) {
		r.recordCreated(name)
		return name, func() error {
			r.recordReleased(name)
			return nil
		}, nil
	}), opts...)
}

func (r *ResourceRecorder) recordCreated(name string) {
	r.mu.Lock()
	r.created = append(r.created, name)
	r.mu.Unlock()
}

func (r *ResourceRecorder) recordReleased(name string) {
	r.mu.Lock()
	r.released = append(r.released, name)
	r.mu.Unlock()
}

// Created returns the creation order so far.
func (r *ResourceRecorder) Created() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.created...)
}

// Released returns the release order so far.
func (r *ResourceRecorder) Released() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.released...)
}

// AssertReleased fails the test unless the recorded release order matches
// want exactly.
func (r *ResourceRecorder) AssertReleased(t *testing.T, want ...string) {
	t.Helper()
	got := r.Released()
	if len(got) != len(want) {
		t.Fatalf("expected releases %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected releases %v, got %v", want, got)
		}
	}
}

// AssertReversed fails the test unless resources were released in exactly
// the reverse of their creation order.
func (r *ResourceRecorder) AssertReversed(t *testing.T) {
	t.Helper()
	created := r.Created()
	reversed := make([]string, len(created))
	for i, name := range created {
		reversed[len(created)-1-i] = name
	}
	r.AssertReleased(t, reversed...)
}
