package utils

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/mogaika/graphicslab/config"
)

var spewConfig = &spew.ConfigState{
	Indent:            "  ",
	DisableCapacities: true,
	DisableMethods:    true,
	SortKeys:          true,
	MaxDepth:          4,
}

func SDump(a ...interface{}) string {
	return spewConfig.Sdump(a...)
}

// DebugDump logs a spew dump of values when the debug log level is on.
func DebugDump(tag string, a ...interface{}) {
	if !config.LogEnabled(config.LogDebug) {
		return
	}
	config.Debugf("%s\n%s", tag, spewConfig.Sdump(a...))
}
