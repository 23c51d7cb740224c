package app

import (
	"github.com/vk/superelastix/internal/registry"
	"github.com/vk/superelastix/modules/examples"
	"github.com/vk/superelastix/modules/filters"
	"github.com/vk/superelastix/modules/sources"
)

// coreModules is the definitive list of all component modules that are
// compiled into the selx binary.
var coreModules = []registry.Module{
	&sources.Module{},
	&filters.Module{},
	&examples.Module{},
}
