package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Change replaces everything at and below Prefix with Leaves. Leaf paths are absolute.
type Change struct {
	Prefix string
	Leaves map[string]any
}

// flatten walks value and records one entry per scalar leaf. Empty objects and
// arrays produce no leaves, so they read back as absent. ServerTimestamp
// sentinels become now.
func flatten(prefix string, value any, now int64, out map[string]any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case string, bool, float64:
		out[prefix] = v
	case int:
		out[prefix] = float64(v)
	case int64:
		out[prefix] = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return fmt.Errorf("invalid number at %q: %w", prefix, err)
		}
		out[prefix] = f
	case map[string]any:
		if IsServerTimestamp(v) {
			out[prefix] = float64(now)
			return nil
		}
		for k, child := range v {
			if err := validKey(k); err != nil {
				return fmt.Errorf("%w: key %q under %q: %v", ErrInvalidPath, k, prefix, err)
			}
			if err := flatten(joinPath(prefix, k), child, now, out); err != nil {
				return err
			}
		}
	case []any:
		for i, child := range v {
			if err := flatten(joinPath(prefix, strconv.Itoa(i)), child, now, out); err != nil {
				return err
			}
		}
	default:
		// Typed values go through their JSON form.
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("unsupported value at %q: %w", prefix, err)
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		return flatten(prefix, generic, now, out)
	}
	return nil
}

// writeChanges turns a Write or Update into the list of subtree replacements.
func writeChanges(path string, values map[string]any, now int64) ([]Change, error) {
	changes := make([]Change, 0, len(values))
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sub, err := CleanPath(k)
		if err != nil {
			return nil, err
		}
		prefix := joinPath(path, sub)
		leaves := map[string]any{}
		if err := flatten(prefix, values[k], now, leaves); err != nil {
			return nil, err
		}
		changes = append(changes, Change{Prefix: prefix, Leaves: leaves})
	}
	return changes, nil
}

// applyChange mutates an in-memory leaf map. Leaves at ancestors of the prefix are
// removed too, since a scalar cannot have children.
func applyChange(leaves map[string]any, c Change) {
	for p := range leaves {
		if c.Prefix == "" || p == c.Prefix || strings.HasPrefix(p, c.Prefix+"/") {
			delete(leaves, p)
		}
	}
	for _, anc := range ancestors(c.Prefix) {
		delete(leaves, anc)
	}
	for p, v := range c.Leaves {
		leaves[p] = v
	}
}

// ancestors lists every proper prefix of path, shortest first.
func ancestors(path string) []string {
	if path == "" {
		return nil
	}
	segs := strings.Split(path, "/")
	out := make([]string, 0, len(segs)-1)
	for i := 1; i < len(segs); i++ {
		out = append(out, strings.Join(segs[:i], "/"))
	}
	return out
}

// build reassembles the value at prefix from leaf entries.
func build(leaves map[string]any, prefix string) any {
	if v, ok := leaves[prefix]; ok && prefix != "" {
		return v
	}
	var root map[string]any
	for p, v := range leaves {
		var rel string
		switch {
		case prefix == "":
			rel = p
		case strings.HasPrefix(p, prefix+"/"):
			rel = strings.TrimPrefix(p, prefix+"/")
		default:
			continue
		}
		if root == nil {
			root = map[string]any{}
		}
		insert(root, strings.Split(rel, "/"), v)
	}
	if root == nil {
		return nil
	}
	return arrays(root)
}

func insert(node map[string]any, segs []string, v any) {
	if len(segs) == 1 {
		node[segs[0]] = v
		return
	}
	child, ok := node[segs[0]].(map[string]any)
	if !ok {
		child = map[string]any{}
		node[segs[0]] = child
	}
	insert(child, segs[1:], v)
}

// arrays converts objects whose keys are all small non-negative integers into
// slices, as long as more than half of the slots are present.
func arrays(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	for k, child := range m {
		m[k] = arrays(child)
	}
	maxIdx := -1
	for k := range m {
		n, err := strconv.Atoi(k)
		if err != nil || n < 0 || strconv.Itoa(n) != k {
			return m
		}
		if n > maxIdx {
			maxIdx = n
		}
	}
	if maxIdx < 0 || len(m)*2 <= maxIdx+1 {
		return m
	}
	out := make([]any, maxIdx+1)
	for k, child := range m {
		n, _ := strconv.Atoi(k)
		out[n] = child
	}
	return out
}
