// Package components bundles the built-in component modules shipped with the
// engine. Applications register them all, or pick individually.
package components

import (
	"github.com/weftlabs/weft/components/conditional"
	"github.com/weftlabs/weft/components/envvars"
	"github.com/weftlabs/weft/components/httpcall"
	"github.com/weftlabs/weft/components/statenode"
	"github.com/weftlabs/weft/components/template"
	"github.com/weftlabs/weft/components/textio"
	"github.com/weftlabs/weft/internal/component"
)

// All returns the built-in component modules.
func All() []component.Module {
	return []component.Module{
		&textio.Module{},
		&template.Module{},
		&envvars.Module{},
		&httpcall.Module{},
		&statenode.Module{},
		&conditional.Module{},
	}
}
