// Command cthyb runs the hybridization-expansion impurity solver from a YAML
// run description.
//
//	cthyb check -c run.yaml   validate the configuration
//	cthyb run   -c run.yaml   solve and write the result file
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
