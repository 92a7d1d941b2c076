// Package property resolves named GraphQL fields on arbitrary Go host values.
//
// # Overview
//
// A Resolver answers "what is the value of property p on this object" for
// objects whose shape is only known at runtime: maps, protobuf messages,
// structs exposing getter methods, or bare struct fields. The first lookup of a
// (runtime type, property) pair runs a discovery chain; its outcome is cached
// so later lookups for the same pair go straight to the accessor, or straight
// to absence.
//
// # Resolution order
//
//  1. Keyed containers (map[string]any, string-keyed maps, protobuf messages)
//     are read directly and never touch the caches.
//  2. Positive cache: a previously discovered method or field accessor.
//  3. Negative cache: a previously recorded absence (while enabled).
//  4. Discovery:
//     a. accessors registered with Register / RegisterGetter;
//     b. exported getters (IsName for Boolean fields, then GetName) on the
//     type and on its exported embedded fields;
//     c. with the visibility override, getters behind unexported embedding and
//     pointer-receiver getters on non-addressable values;
//     d. exported struct fields (graphql tag, then Name), then, with the
//     override, the unexported field name.
//  5. Absence, recorded in the negative cache.
//
// # Accessor shapes
//
// Getters take no arguments or exactly one *Env, and return either a value or
// a value and an error:
//
//	func (u *User) GetName() string
//	func (u *User) IsActive() bool
//	func (u *User) GetFriends(env *property.Env) ([]*User, error)
//
// When an *Env is supplied, an Env-taking getter is preferred. An Env-taking
// getter found earlier is skipped (absence) when no Env is supplied.
//
// # Errors
//
// Missing properties are not errors: Resolve returns found == false. The only
// error is *ResolutionError, returned when an accessor was invoked and failed,
// either by returning a non-nil error or by panicking.
//
// # Concurrency
//
// A Resolver is safe for concurrent use. Racing first-time lookups of the same
// key may each run discovery; the first cached result wins and every racer
// computes the same accessor. Caches are unbounded and live until ClearCache.
package property
