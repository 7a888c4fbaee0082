package app

import (
	"github.com/vk/graphproc/internal/loader"
	"github.com/vk/graphproc/modules/coll"
	"github.com/vk/graphproc/modules/dbms"
	"github.com/vk/graphproc/modules/env_vars"
	"github.com/vk/graphproc/modules/text"
)

// coreModules is the definitive list of all modules that are compiled into
// the graphproc binary.
var coreModules = []loader.Module{
	&dbms.Module{},
	&text.Module{},
	&coll.Module{},
	&env_vars.Module{},
}
