// Package doctree walks arbitrary decoded JSON trees, replacing nodes that
// satisfy a structural predicate with the result of a transform.
package doctree

import "context"

// Predicate decides whether an object node is subject to transformation.
type Predicate func(node map[string]any) bool

// Transform rewrites a matched node. The returned value replaces the node
// in the tree.
type Transform func(ctx context.Context, node map[string]any) (any, error)

// Walk traverses every property of tree in place. A matching object is
// replaced with the transform's result; other objects are recursed into;
// slices get the object rule applied element-wise one level only (slices
// nested inside slices are not traversed). Untouched properties are left
// exactly as they were. The first transform error aborts the walk; nodes
// replaced before the failure are not rolled back.
func Walk(ctx context.Context, tree map[string]any, match Predicate, transform Transform) error {
	for key, value := range tree {
		switch v := value.(type) {
		case map[string]any:
			if match(v) {
				replaced, err := transform(ctx, v)
				if err != nil {
					return err
				}
				tree[key] = replaced
			} else if err := Walk(ctx, v, match, transform); err != nil {
				return err
			}
		case []any:
			for i, elem := range v {
				obj, ok := elem.(map[string]any)
				if !ok {
					continue
				}
				if match(obj) {
					replaced, err := transform(ctx, obj)
					if err != nil {
						return err
					}
					v[i] = replaced
				} else if err := Walk(ctx, obj, match, transform); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
