package platform

import (
	"context"
	"fmt"
)

// IndexAction is the sync action applied to the tool search index for one
// extension.
type IndexAction string

const (
	IndexActionAdd    IndexAction = "add"
	IndexActionRemove IndexAction = "remove"
)

// UpdateExtensionTools applies one index action for one extension. For add,
// the extension's currently advertised tools are read from the extension
// manager and indexed; an extension that is not enabled yet contributes no
// tools, so a speculative add ahead of an install indexes nothing. For
// remove, every indexed tool of the extension is dropped.
func UpdateExtensionTools(ctx context.Context, selector ToolSelector, em ExtensionManager, extensionName string, action IndexAction) error {
	switch action {
	case IndexActionAdd:
		tools, err := em.ExtensionTools(ctx, extensionName)
		if err != nil {
			return err
		}
		return selector.IndexTools(ctx, extensionName, tools)
	case IndexActionRemove:
		return selector.RemoveTools(ctx, extensionName)
	default:
		return fmt.Errorf("unsupported index action %q", action)
	}
}
