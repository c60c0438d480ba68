// Package references keeps the two representations of a parameter binding
// consistent across a workflow's blocks: inline {{ key }} tokens embedded in
// free-text fields, and the structured parameter-key lists some block types
// carry. All functions are pure: they return new collections and preserve the
// identity of every block they did not change.
package references

import (
	"regexp"
	"slices"

	"github.com/plumehq/plume/pkg/models"
)

// BlockRef identifies a block for display in a confirmation dialog.
type BlockRef struct {
	BlockID string `json:"block_id"`
	Label   string `json:"label"`
}

// tokenPattern matches {{ key }} with any whitespace (including tabs and
// newlines) between the braces and the key. The closing "\s*}}" anchors the
// key, so a key never matches inside a longer identifier.
func tokenPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`\{\{(\s*)` + regexp.QuoteMeta(key) + `(\s*)\}\}`)
}

// Scan returns the ids of every block with at least one inline reference to
// key, in node-collection order without duplicates (set semantics). Pure
// read; safe to call speculatively.
func Scan(blocks []models.Block, key string) []string {
	pattern := tokenPattern(key)
	ids := make([]string, 0)

	for _, block := range blocks {
		if anyFieldMatches(block, pattern) {
			ids = append(ids, block.BlockID())
		}
	}

	return ids
}

// Remove deletes every inline reference to key from every free-text field.
// Surrounding text is left as-is, including any doubled whitespace the token
// leaves behind. Idempotent.
func Remove(blocks []models.Block, key string) []models.Block {
	pattern := tokenPattern(key)

	return rewrite(blocks, pattern, func(string) string { return "" })
}

// Rename rewrites every inline reference to oldKey so it references newKey,
// preserving the whitespace style inside the braces byte for byte.
func Rename(blocks []models.Block, oldKey, newKey string) []models.Block {
	pattern := tokenPattern(oldKey)

	return rewrite(blocks, pattern, func(token string) string {
		sub := pattern.FindStringSubmatch(token)

		return "{{" + sub[1] + newKey + sub[2] + "}}"
	})
}

// RemoveFromKeyLists filters key out of every block's parameter-key list.
// Block types without a key list pass through unchanged.
func RemoveFromKeyLists(blocks []models.Block, key string) []models.Block {
	out := make([]models.Block, len(blocks))

	for i, block := range blocks {
		keys := block.ParameterKeys()
		if !slices.Contains(keys, key) {
			out[i] = block

			continue
		}

		kept := make([]string, 0, len(keys)-1)

		for _, k := range keys {
			if k != key {
				kept = append(kept, k)
			}
		}

		out[i] = block.WithParameterKeys(kept)
	}

	return out
}

// RenameInKeyLists maps oldKey to newKey in every block's parameter-key
// list, preserving list order. Block types without a key list pass through
// unchanged.
func RenameInKeyLists(blocks []models.Block, oldKey, newKey string) []models.Block {
	out := make([]models.Block, len(blocks))

	for i, block := range blocks {
		keys := block.ParameterKeys()
		if !slices.Contains(keys, oldKey) {
			out[i] = block

			continue
		}

		mapped := make([]string, len(keys))

		for j, k := range keys {
			if k == oldKey {
				mapped[j] = newKey
			} else {
				mapped[j] = k
			}
		}

		out[i] = block.WithParameterKeys(mapped)
	}

	return out
}

// AffectedBlocks returns every block that references key through either
// representation, in node-collection order. Used to build the confirmation
// list before a destructive edit; never mutates.
func AffectedBlocks(blocks []models.Block, key string) []BlockRef {
	pattern := tokenPattern(key)
	affected := make([]BlockRef, 0)

	for _, block := range blocks {
		if anyFieldMatches(block, pattern) || slices.Contains(block.ParameterKeys(), key) {
			affected = append(affected, BlockRef{
				BlockID: block.BlockID(),
				Label:   block.BlockLabel(),
			})
		}
	}

	return affected
}

func anyFieldMatches(block models.Block, pattern *regexp.Regexp) bool {
	for _, field := range block.TextFields() {
		if pattern.MatchString(field) {
			return true
		}
	}

	return false
}

func rewrite(blocks []models.Block, pattern *regexp.Regexp, replace func(string) string) []models.Block {
	out := make([]models.Block, len(blocks))

	for i, block := range blocks {
		fields := block.TextFields()
		changed := false

		for j, field := range fields {
			if pattern.MatchString(field) {
				fields[j] = pattern.ReplaceAllStringFunc(field, replace)
				changed = true
			}
		}

		if changed {
			out[i] = block.WithTextFields(fields)
		} else {
			out[i] = block
		}
	}

	return out
}
