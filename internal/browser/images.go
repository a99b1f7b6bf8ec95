package browser

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/kanistore/storefront/internal/client"
)

// ImageChecker reports whether an image can be loaded.
// client.CatalogClient implements it with a HEAD request.
type ImageChecker interface {
	CheckImage(ctx context.Context, ref string) error
}

// ImageTracker decides which image source to render. An image that failed
// to load is replaced by the placeholder, once; later reports for the same
// image are no-ops.
type ImageTracker struct {
	mu            sync.Mutex
	placeholder   string
	failed        map[string]struct{}
	checked       map[string]struct{}
	substitutions int
}

func NewImageTracker(placeholder string) *ImageTracker {
	return &ImageTracker{
		placeholder: placeholder,
		failed:      make(map[string]struct{}),
		checked:     make(map[string]struct{}),
	}
}

// Source returns ref, or the placeholder when ref is empty or has failed.
func (t *ImageTracker) Source(ref string) string {
	if ref == "" {
		return t.placeholder
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, failed := t.failed[ref]; failed {
		return t.placeholder
	}
	return ref
}

// ReportFailure records that ref could not be loaded and reports whether
// this call switched it to the placeholder.
func (t *ImageTracker) ReportFailure(ref string) bool {
	if ref == "" || ref == t.placeholder {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, failed := t.failed[ref]; failed {
		return false
	}
	t.failed[ref] = struct{}{}
	t.substitutions++
	return true
}

func (t *ImageTracker) Substitutions() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.substitutions
}

// Verify checks each ref with checker at most once and reports the ones
// that fail. It returns how many refs were switched to the placeholder.
// A cancelled check is forgotten so the next Verify retries it.
func (t *ImageTracker) Verify(ctx context.Context, checker ImageChecker, refs []string) int {
	switched := 0
	for _, ref := range refs {
		if !t.claim(ref) {
			continue
		}

		err := checker.CheckImage(ctx, ref)
		switch {
		case err == nil:
		case client.IsCancelled(err) || ctx.Err() != nil:
			t.release(ref)
			return switched
		default:
			log.WithError(err).WithField("image", ref).Debug("Image failed to load, using placeholder")
			if t.ReportFailure(ref) {
				switched++
			}
		}
	}
	return switched
}

func (t *ImageTracker) claim(ref string) bool {
	if ref == "" || ref == t.placeholder {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, done := t.checked[ref]; done {
		return false
	}
	t.checked[ref] = struct{}{}
	return true
}

func (t *ImageTracker) release(ref string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.checked, ref)
}
