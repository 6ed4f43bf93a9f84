// Package timeouts defines shared timeout constants used across the deathswap
// binaries.
package timeouts

import "time"

// GRPCDial caps the wait for the control service to report healthy.
const GRPCDial = 2 * time.Second

// GRPCRequest caps a single control RPC issued by the operator CLI.
const GRPCRequest = 5 * time.Second

// ControlCall caps how long an RPC handler waits on the round controller inbox.
const ControlCall = 2 * time.Second

// JournalWrite caps one round-journal statement issued from the control loop.
const JournalWrite = time.Second

// Shutdown limits how long servers wait for in-flight work during graceful
// shutdown.
const Shutdown = 5 * time.Second
