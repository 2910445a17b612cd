package main

import (
	"fmt"
	"os"

	"fjacquet/eod-recon/cmd/importcmd"
	"fjacquet/eod-recon/cmd/mapname"
	"fjacquet/eod-recon/cmd/profiles"
	"fjacquet/eod-recon/cmd/reconcile"
	"fjacquet/eod-recon/cmd/regions"
	"fjacquet/eod-recon/cmd/root"
	"fjacquet/eod-recon/cmd/rollup"
	"fjacquet/eod-recon/cmd/serve"
	"fjacquet/eod-recon/cmd/submit"
	"fjacquet/eod-recon/cmd/summarize"
)

func init() {
	root.Init()

	root.Cmd.AddCommand(summarize.Cmd)
	root.Cmd.AddCommand(submit.Cmd)
	root.Cmd.AddCommand(importcmd.Cmd)
	root.Cmd.AddCommand(reconcile.Cmd)
	root.Cmd.AddCommand(mapname.Cmd)
	root.Cmd.AddCommand(rollup.Cmd)
	root.Cmd.AddCommand(regions.Cmd)
	root.Cmd.AddCommand(profiles.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
