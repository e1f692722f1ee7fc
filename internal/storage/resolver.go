package storage

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"foodmemories/internal/model"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ModuleSlug normalizes a module id into a directory name: lower case,
// whitespace runs collapsed into a single hyphen. Path separators are
// replaced too so a module id always stays one segment.
func ModuleSlug(moduleID string) string {
	s := whitespaceRun.ReplaceAllString(strings.TrimSpace(moduleID), "-")
	s = strings.NewReplacer("/", "-", `\`, "-").Replace(s)
	return strings.ToLower(s)
}

// RelativeDir builds day-<day>/phase-<phaseIndex+1>[/<module slug>].
func RelativeDir(loc model.PhotoLocation) string {
	parts := []string{
		"day-" + strconv.Itoa(loc.Day),
		"phase-" + strconv.Itoa(loc.PhaseIndex+1),
	}
	if slug := ModuleSlug(loc.ModuleID); slug != "" {
		parts = append(parts, slug)
	}
	return strings.Join(parts, "/")
}

// Resolver turns a photo location into a directory that exists in the store.
type Resolver struct {
	store Storage
}

// NewResolver creates a Resolver over store.
func NewResolver(store Storage) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the relative directory for loc after making sure it exists.
// Calling it again with the same location returns the same path and changes nothing.
func (r *Resolver) Resolve(ctx context.Context, loc model.PhotoLocation) (string, error) {
	dir := RelativeDir(loc)
	if err := r.store.MakeDir(ctx, dir); err != nil {
		return "", fmt.Errorf("ensure directory %s: %w", dir, err)
	}
	return dir, nil
}
