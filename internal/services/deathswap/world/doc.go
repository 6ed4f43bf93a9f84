// Package world models the slice of the host world the minigame touches:
// block and region geometry, the terrain query capability, region
// reservations, and the safe-spawn predicate built on top of them.
package world
