package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/weftlabs/weft/internal/flowdef"
	"github.com/weftlabs/weft/internal/hcldef"
)

// loadFlow picks the codec by file extension and loads the flow definition.
func loadFlow(ctx context.Context, path string) (*flowdef.Flow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return hcldef.Load(ctx, path)
	case ".yaml", ".yml", ".json":
		return flowdef.Load(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported flow definition extension %q", filepath.Ext(path))
	}
}
