// Package pds implements a persistent collection engine: an indexed
// vector, an unordered map, an unordered set, an optional insertion-order
// index, and a draft/recipe engine that lets many edits be applied to a
// base collection through a single "recipe" with structural sharing
// against the original.
//
// The engine is built from three layers:
//
//   - [vec.Vec], [hamt.Map] and [hamt.Set] are the persistent data
//     structures: every update returns a new value and leaves the
//     original untouched.
//   - [owner.Token] and the transient rule let callers batch many edits
//     through a single produce call with only one clone per touched node,
//     instead of one clone per edit.
//   - [draft] wraps a base value in a mutable façade, replays a recipe's
//     mutations against transient nodes, and finalises a new persistent
//     value — or returns the original by identity when nothing changed.
//
// The host-language proxy that makes a [draft] look like a native
// array/map/set, JSON shims, and the benchmark harness are not part of
// this module; see SPEC_FULL.md for the full boundary.
package pds
