// Package hostsim is an in-process game host for running rounds without a
// real server. It provides a seeded procedural world, a player registry that
// doubles as directory, teleporter and role assigner, counted region
// reservations, and a broadcaster that logs every line and fans it out to
// websocket subscribers.
package hostsim
