package doctree

import (
	"context"
	"errors"
	"testing"
)

func isTagged(node map[string]any) bool {
	kind, ok := node["kind"].(string)
	return ok && kind == "file"
}

func markVisited(_ context.Context, node map[string]any) (any, error) {
	node["visited"] = true
	return node, nil
}

func TestWalkReplacesTopLevelNode(t *testing.T) {
	tree := map[string]any{
		"title": "post",
		"image": map[string]any{"kind": "file", "path": "a.png"},
	}
	if err := Walk(context.Background(), tree, isTagged, markVisited); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	img := tree["image"].(map[string]any)
	if img["visited"] != true {
		t.Error("top-level node not transformed")
	}
	if tree["title"] != "post" {
		t.Error("untouched property changed")
	}
}

func TestWalkRecursesIntoNestedObjects(t *testing.T) {
	tree := map[string]any{
		"meta": map[string]any{
			"cover": map[string]any{"kind": "file", "path": "c.png"},
		},
	}
	if err := Walk(context.Background(), tree, isTagged, markVisited); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	cover := tree["meta"].(map[string]any)["cover"].(map[string]any)
	if cover["visited"] != true {
		t.Error("nested node not transformed")
	}
}

func TestWalkHandlesSlicesOneLevel(t *testing.T) {
	tree := map[string]any{
		"gallery": []any{
			map[string]any{"kind": "file", "path": "1.png"},
			map[string]any{"caption": "no tag"},
			"plain string",
		},
		"matrix": []any{
			[]any{map[string]any{"kind": "file", "path": "deep.png"}},
		},
	}
	if err := Walk(context.Background(), tree, isTagged, markVisited); err != nil {
		t.Fatalf("Walk: %v", err)
	}

	gallery := tree["gallery"].([]any)
	if gallery[0].(map[string]any)["visited"] != true {
		t.Error("slice element not transformed")
	}
	if _, ok := gallery[1].(map[string]any)["visited"]; ok {
		t.Error("untagged element was transformed")
	}

	// Slices nested inside slices are deliberately not traversed.
	inner := tree["matrix"].([]any)[0].([]any)[0].(map[string]any)
	if _, ok := inner["visited"]; ok {
		t.Error("slice-in-slice element should not be traversed")
	}
}

func TestWalkRecursesIntoObjectsInsideSlices(t *testing.T) {
	tree := map[string]any{
		"sections": []any{
			map[string]any{
				"hero": map[string]any{"kind": "file", "path": "h.png"},
			},
		},
	}
	if err := Walk(context.Background(), tree, isTagged, markVisited); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	hero := tree["sections"].([]any)[0].(map[string]any)["hero"].(map[string]any)
	if hero["visited"] != true {
		t.Error("object inside slice not recursed into")
	}
}

func TestWalkReplacementValue(t *testing.T) {
	tree := map[string]any{
		"file": map[string]any{"kind": "file", "path": "x.bin"},
	}
	err := Walk(context.Background(), tree, isTagged, func(_ context.Context, _ map[string]any) (any, error) {
		return "replaced", nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if tree["file"] != "replaced" {
		t.Errorf("file = %v, want replacement value", tree["file"])
	}
}

func TestWalkPropagatesTransformError(t *testing.T) {
	boom := errors.New("boom")
	tree := map[string]any{
		"file": map[string]any{"kind": "file", "path": "x.bin"},
	}
	err := Walk(context.Background(), tree, isTagged, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}
