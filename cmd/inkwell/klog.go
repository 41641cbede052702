package main

import (
	"flag"

	"github.com/urfave/cli/v2"
	"k8s.io/klog/v2"
)

var klogFlagSet = func() *flag.FlagSet {
	fs := flag.NewFlagSet("klog", flag.PanicOnError)
	klog.InitFlags(fs)
	fs.Set("logtostderr", "true")
	return fs
}()

// FlagVerbose toggles klog's -v=2 verbosity level via the global flag
// registered above, the same "urfave/cli flag driving a stdlib flag.FlagSet
// klog owns" wiring the teacher CLI uses for its full klog flag set.
var FlagVerbose = &cli.BoolFlag{
	Name:  "verbose",
	Usage: "enable verbose (-v=2) logging",
	Action: func(cctx *cli.Context, v bool) error {
		if v {
			klogFlagSet.Set("v", "2")
		}
		return nil
	},
}
