// Package locationcache keeps a bounded pool of pre-validated spawn points.
//
// A background loop samples random columns and validates them with
// world.SafeColumn. Every pooled location holds a region reservation that the
// cache releases on shutdown, or that the caller of Take releases once the
// location has been used. At most one search runs at a time no matter how
// often the population cycle fires.
package locationcache
