// Package cubeanim animates a 3x3x3 cube puzzle built from 27 independent
// cubelets, turning face layers in response to standard notation.
//
// # Features
//
//   - Layer classification from cubelet positions, recomputed after every turn
//   - Frame-stepped quarter turns with world-preserving reparenting
//   - Lattice snapping of positions and, optionally, orientations
//   - FIFO request queue safe for producers on other goroutines
//   - Snapshots of the full cubelet state
//   - Mirroring a physical GoCube over Bluetooth Low Energy
//
// # Quick Start
//
// Apply moves headlessly:
//
//	c := cubeanim.New()
//	if err := c.ApplyNotation("R U R' U'"); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(c)
//
// Or drive the animation from a frame clock:
//
//	clock := cubeanim.NewTickerClock(60)
//	defer clock.Stop()
//
//	c.Submit(cubeanim.U)
//	c.Submit(cubeanim.RPrime)
//	err := c.Run(ctx, clock, func() {
//	    render(c.Transforms())
//	})
//
// # Notation
//
// Moves are a face letter from UDLRFB with an optional prime for a
// counter-clockwise turn. Clockwise is a positive right-handed quarter turn
// about the layer's axis (+y for U and D, +x for L and R, +z for F and B).
// Half turns and slice moves are not part of the grammar.
package cubeanim
