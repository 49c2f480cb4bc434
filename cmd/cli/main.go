// layerdwell - G-code Layer Time Smoothing Tool
//
// layerdwell estimates per-layer print times in sliced G-code and inserts
// pauses so that fast layers get time to cool before the next one starts.
package main

import (
	"os"

	"github.com/ccollicutt/layerdwell/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
