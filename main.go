package main

import (
	"flag"
	"strings"

	"go.uber.org/fx"

	"github.com/joshuarp/taskguard-api/internal/app"
)

var defaultBin string

func selectedModules(binValue string) []fx.Option {
	selected := strings.TrimSpace(strings.ToLower(binValue))

	switch selected {
	case app.BinAPI:
		return []fx.Option{
			app.APIModule(),
		}
	case app.BinWorker:
		return []fx.Option{
			app.WorkerModule(),
		}
	default:
		return []fx.Option{
			app.APIModule(),
			app.WorkerModule(),
		}
	}
}

func main() {
	bin := flag.String("bin", defaultBin, "select binary: api|worker (default: all)")
	flag.Parse()

	app.New(*bin, selectedModules(*bin)...).Run()
}
