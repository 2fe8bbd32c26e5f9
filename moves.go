package cubeanim

// Predefined moves for convenience.
//
// Example:
//
//	c.Apply(cubeanim.R, cubeanim.U, cubeanim.RPrime, cubeanim.UPrime)
var (
	U      = Move{Face: FaceU, Direction: CW}
	UPrime = Move{Face: FaceU, Direction: CCW}

	D      = Move{Face: FaceD, Direction: CW}
	DPrime = Move{Face: FaceD, Direction: CCW}

	L      = Move{Face: FaceL, Direction: CW}
	LPrime = Move{Face: FaceL, Direction: CCW}

	R      = Move{Face: FaceR, Direction: CW}
	RPrime = Move{Face: FaceR, Direction: CCW}

	F      = Move{Face: FaceF, Direction: CW}
	FPrime = Move{Face: FaceF, Direction: CCW}

	B      = Move{Face: FaceB, Direction: CW}
	BPrime = Move{Face: FaceB, Direction: CCW}
)

// AllMoves lists the twelve quarter turns.
var AllMoves = []Move{U, UPrime, D, DPrime, L, LPrime, R, RPrime, F, FPrime, B, BPrime}

// SexyMove is R U R' U', which has order six.
var SexyMove = []Move{R, U, RPrime, UPrime}
