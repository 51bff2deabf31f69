package logctx

import (
	"context"
	"gelfmover/internal/global"
	"slices"
)

// Returns a context whose tag list is the parent's plus newTags.
// Parent contexts never observe the change.
func AppendCtxTag(ctx context.Context, newTags ...string) (newCtx context.Context) {
	old, _ := ctx.Value(global.LogTagsKey).([]string)

	tags := make([]string, 0, len(old)+len(newTags))
	tags = append(tags, old...)
	tags = append(tags, newTags...)

	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Replaces the tag list. newList is copied.
func OverwriteCtxTag(ctx context.Context, newList []string) (newCtx context.Context) {
	newCtx = context.WithValue(ctx, global.LogTagsKey, slices.Clone(newList))
	return
}

// Copy of the tag list; empty when none is set
func GetTagList(ctx context.Context) (tags []string) {
	stored, _ := ctx.Value(global.LogTagsKey).([]string)
	tags = slices.Clone(stored)
	if tags == nil {
		tags = []string{}
	}
	return
}
