package collab

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/flowcanvas/backend/internal/model"
)

// lockOp is one step of a generated lock workload.
type lockOp struct {
	User   string
	Node   string
	Stop   bool
	Leaves bool
}

func lockOpGen() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 4),
		gen.IntRange(0, 3),
		gen.Bool(),
		gen.IntRange(0, 9),
	).Map(func(vals []interface{}) lockOp {
		return lockOp{
			User:   fmt.Sprintf("user-%d", vals[0].(int)),
			Node:   fmt.Sprintf("node-%d", vals[1].(int)),
			Stop:   vals[2].(bool),
			Leaves: vals[3].(int) == 0, // occasional full release
		}
	})
}

// For any interleaving of start/stop/release requests, a node is held by
// at most one user at any observed instant, and a denied request leaves
// the holder unchanged.
func TestLockExclusivityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("at most one holder per node under any workload", prop.ForAll(
		func(ops []lockOp) bool {
			locks := NewLocks()
			// expected holder per node, maintained independently
			expected := make(map[string]string)

			for _, op := range ops {
				switch {
				case op.Leaves:
					locks.ReleaseAllFor("wf-1", op.User)
					for node, user := range expected {
						if user == op.User {
							delete(expected, node)
						}
					}
				case op.Stop:
					if _, ok := locks.StopEditing("wf-1", op.User, op.Node); ok {
						if expected[op.Node] != op.User {
							return false
						}
						delete(expected, op.Node)
					} else if expected[op.Node] == op.User {
						return false
					}
				default:
					res := locks.StartEditing("wf-1", model.LockEntry{
						UserID: op.User, Username: op.User, NodeID: op.Node, Timestamp: time.Now(),
					})
					holder, held := expected[op.Node]
					// A user switching nodes drops their previous node.
					if res.Granted {
						if held && holder != op.User {
							return false
						}
						if res.Released != nil {
							delete(expected, res.Released.NodeID)
						}
						expected[op.Node] = op.User
					} else {
						if !held || holder == op.User || res.Holder.UserID != holder {
							return false
						}
					}
				}

				// Cross-check every node against the manager's view.
				for node, user := range expected {
					got, ok := locks.Holder("wf-1", node)
					if !ok || got.UserID != user {
						return false
					}
				}
				if locks.Count() != len(expected) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(lockOpGen()),
	))

	properties.TestingRun(t)
}

// For any sequence of cursor updates, only the most recent position per
// user is observable.
func TestCursorLastWriteWinsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("only the last update per user survives", prop.ForAll(
		func(positions []float64) bool {
			if len(positions) == 0 {
				return true
			}

			cursors := NewCursors()
			for _, x := range positions {
				cursors.Update("wf-1", model.CursorEntry{
					UserID:   "alice",
					Position: model.Position{X: x},
				})
			}

			entry, ok := cursors.Get("wf-1", "alice")
			if !ok {
				return false
			}
			return entry.Position.X == positions[len(positions)-1] &&
				len(cursors.Snapshot("wf-1")) == 1
		},
		gen.SliceOf(gen.Float64Range(-1e6, 1e6)),
	))

	properties.TestingRun(t)
}

// For any sequence of joins followed by the matching leaves, membership
// state returns exactly to empty: join and leave are symmetric.
func TestJoinLeaveSymmetryProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	pairGen := gopter.CombineGens(
		gen.IntRange(0, 9),
		gen.IntRange(0, 4),
	).Map(func(vals []interface{}) [2]string {
		return [2]string{
			fmt.Sprintf("session-%d", vals[0].(int)),
			fmt.Sprintf("wf-%d", vals[1].(int)),
		}
	})

	properties.Property("leave fully reverses join", prop.ForAll(
		func(pairs [][2]string) bool {
			rooms := NewRooms()

			for _, p := range pairs {
				rooms.Join(p[0], p[1])
			}
			for _, p := range pairs {
				rooms.Leave(p[0], p[1])
			}

			if rooms.Count() != 0 {
				return false
			}
			for _, p := range pairs {
				if len(rooms.RoomsOf(p[0])) != 0 {
					return false
				}
				if rooms.Contains(p[1], p[0]) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(pairGen),
	))

	properties.TestingRun(t)
}
