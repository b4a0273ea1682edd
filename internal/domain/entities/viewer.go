package entities

import "context"

// Viewer describes who is making the current request.
type Viewer struct {
	Authenticated bool
	Admin         bool
}

type viewerKey struct{}

// WithViewer stores the viewer on the context.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, viewer)
}

// ViewerFromContext returns the request viewer, anonymous when none was set.
func ViewerFromContext(ctx context.Context) Viewer {
	if viewer, ok := ctx.Value(viewerKey{}).(Viewer); ok {
		return viewer
	}
	return Viewer{}
}
