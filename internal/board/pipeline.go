package board

import "github.com/antojo-app/api/internal/enum"

// Direction of a single-step transition on the fulfillment pipeline.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// pipeline is the totally ordered sequence of fulfillment states. Rank is
// position in this slice.
var pipeline = []string{
	enum.OrderStatePending,
	enum.OrderStatePreparing,
	enum.OrderStateDelivered,
}

// States returns the pipeline in rank order. The returned slice is a copy.
func States() []string {
	out := make([]string, len(pipeline))
	copy(out, pipeline)
	return out
}

// rank returns the position of state in the pipeline, or -1 for a state
// the pipeline does not know.
func rank(state string) int {
	for i, s := range pipeline {
		if s == state {
			return i
		}
	}
	return -1
}

// Successor returns the state one rank after from, and false when from is
// terminal or unknown.
func Successor(from string) (string, bool) {
	r := rank(from)
	if r < 0 || r+1 >= len(pipeline) {
		return "", false
	}
	return pipeline[r+1], true
}
