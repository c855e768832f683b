package main

import (
	"context"
	"strconv"

	"github.com/teampulse/teampulse/internal/types"
)

// resolveProject accepts either a project name or a numeric ID.
func resolveProject(ctx context.Context, ref string) (*types.Project, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return store.GetProject(ctx, id)
	}
	return store.GetProjectByName(ctx, ref)
}
