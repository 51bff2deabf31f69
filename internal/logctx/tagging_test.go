package logctx

import (
	"context"
	"fmt"
	"gelfmover/internal/global"
	"reflect"
	"sync"
	"testing"
)

func ctxWithTags(tags []string) context.Context {
	return context.WithValue(context.Background(), global.LogTagsKey, tags)
}

func assertTags(t *testing.T, ctx context.Context, want []string) {
	t.Helper()
	got := GetTagList(ctx)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tags mismatch: got=%v want=%v", got, want)
	}
}

func TestGetTagList(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want []string
	}{
		{
			name: "no value in context",
			ctx:  context.Background(),
			want: []string{},
		},
		{
			name: "stored list",
			ctx:  ctxWithTags([]string{"Receiver", "Listener"}),
			want: []string{"Receiver", "Listener"},
		},
		{
			name: "wrong type stored",
			ctx:  context.WithValue(context.Background(), global.LogTagsKey, "nope"),
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTags(t, tt.ctx, tt.want)
		})
	}
}

func TestGetTagList_CallerOwnsResult(t *testing.T) {
	ctx := ctxWithTags([]string{"Receiver", "Dispatcher"})

	tags := GetTagList(ctx)
	tags[0] = "mutated"

	assertTags(t, ctx, []string{"Receiver", "Dispatcher"})
}

func TestAppendCtxTag(t *testing.T) {
	tests := []struct {
		name      string
		startTags []string
		add       []string
		want      []string
	}{
		{name: "append to empty", add: []string{"Receiver"}, want: []string{"Receiver"}},
		{name: "append to existing", startTags: []string{"Receiver"}, add: []string{"Reaper"}, want: []string{"Receiver", "Reaper"}},
		{name: "append several", startTags: []string{"Receiver"}, add: []string{"Listener", "0"}, want: []string{"Receiver", "Listener", "0"}},
		{name: "append nothing", startTags: []string{"Receiver"}, want: []string{"Receiver"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := ctxWithTags(tt.startTags)
			child := AppendCtxTag(parent, tt.add...)

			assertTags(t, child, tt.want)
			if tt.startTags == nil {
				assertTags(t, parent, []string{})
			} else {
				assertTags(t, parent, tt.startTags)
			}
		})
	}
}

func TestAppendCtxTag_SiblingsIndependent(t *testing.T) {
	// Spare capacity in the parent list must not be shared
	base := make([]string, 1, 4)
	base[0] = "Receiver"
	parent := ctxWithTags(base)

	first := AppendCtxTag(parent, "Listener")
	second := AppendCtxTag(parent, "Processor")

	assertTags(t, first, []string{"Receiver", "Listener"})
	assertTags(t, second, []string{"Receiver", "Processor"})
}

func TestOverwriteCtxTag(t *testing.T) {
	newTags := []string{"Receiver"}
	ctx := OverwriteCtxTag(ctxWithTags([]string{"old", "list"}), newTags)
	newTags[0] = "mutated"

	assertTags(t, ctx, []string{"Receiver"})

	ctx = AppendCtxTag(ctx, "Sink")
	assertTags(t, ctx, []string{"Receiver", "Sink"})
}

func TestContextTags_Concurrent(t *testing.T) {
	baseCtx := OverwriteCtxTag(context.Background(), []string{"Receiver"})

	const goroutines = 8
	results := make([][]string, goroutines)

	var wg sync.WaitGroup
	for i := range goroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			ctx := AppendCtxTag(baseCtx, fmt.Sprintf("worker-%d", id))
			ctx = AppendCtxTag(ctx, "final")
			results[id] = GetTagList(ctx)
		}(i)
	}
	wg.Wait()

	assertTags(t, baseCtx, []string{"Receiver"})
	for id, tags := range results {
		want := []string{"Receiver", fmt.Sprintf("worker-%d", id), "final"}
		if !reflect.DeepEqual(tags, want) {
			t.Fatalf("goroutine %d tags mismatch: got=%v want=%v", id, tags, want)
		}
	}
}
