// Package scenarios bundles the built-in scenarios. Importing it registers
// every embedded scenario file with the registry.
package scenarios

import (
	"embed"

	"github.com/vovakirdan/tilerules/internal/levels"
	"github.com/vovakirdan/tilerules/internal/registry"
)

//go:embed *.yaml
var files embed.FS

// Loader returns a loader over the embedded scenario files.
func Loader() *levels.Loader {
	return levels.NewFSLoader(files, ".")
}

func init() {
	all, err := Loader().LoadAll()
	if err != nil {
		panic("scenarios: " + err.Error())
	}
	for _, sc := range all {
		registry.Register(sc.ID, registry.FromScenario(sc))
	}
}
