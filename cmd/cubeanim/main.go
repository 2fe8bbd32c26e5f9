// cubeanim animates layer rotations of a 3x3x3 cube.
package main

import (
	"github.com/SeamusWaldron/cubeanim/internal/cli"
)

func main() {
	cli.Execute()
}
