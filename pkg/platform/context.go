// Package platform implements the bridge's platform adapters: the Core
// client and the Extension Manager client. Both expose the uniform
// core.Client contract over two backing components they do not own, an
// extension manager and a tool route manager, reached through a capability
// context of non-owning references.
package platform

import "sync"

// Ref is a non-owning handle to a backing component. The component's owner
// (the agent runtime) releases the handle when it tears the component down;
// from then on Resolve reports the component as gone. Consumers must resolve
// fresh on every operation and handle the absent case, never hold on to a
// resolved value across calls.
type Ref[T any] struct {
	mu   sync.RWMutex
	v    T
	live bool
}

// NewRef returns a live handle to v.
func NewRef[T any](v T) *Ref[T] {
	return &Ref[T]{v: v, live: true}
}

// Resolve returns the component and whether it is still live.
func (r *Ref[T]) Resolve() (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.v, r.live
}

// Release marks the component as gone. Subsequent Resolve calls fail.
func (r *Ref[T]) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	r.v = zero
	r.live = false
}

// Context bundles the non-owning references an adapter needs to reach its
// backing components. It is established once at adapter construction and
// never re-bound; either field may be nil when the component was never
// wired at all.
type Context struct {
	ExtensionManager *Ref[ExtensionManager]
	ToolRouteManager *Ref[ToolRouteManager]
}

func (c Context) extensionManager() (ExtensionManager, bool) {
	if c.ExtensionManager == nil {
		return nil, false
	}
	return c.ExtensionManager.Resolve()
}

func (c Context) toolRouteManager() (ToolRouteManager, bool) {
	if c.ToolRouteManager == nil {
		return nil, false
	}
	return c.ToolRouteManager.Resolve()
}
