// Package gameserver exposes the session registry over gRPC: it validates
// requests, forwards them to the registry, streams per-participant
// snapshots, and records concluded matches.
//
// Session state lives entirely in internal/game/session; this package maps
// it to the tictacv1 wire contract and to gRPC status codes.
package gameserver
