// Package graph is the authorization-aware read and write surface over
// the domain repositories.
//
// Every operation takes the request's authorization context and decides
// what the caller may do before touching a repository: traversals from
// the caller's own identity (their groups, devices, capabilities) just
// need a resolved user, while organisation-wide listings additionally
// require membership of that organisation. Mutations require an
// authenticated caller without exception.
//
// The traversals are explicit typed methods, one per edge. There is no
// generic query language; what the graph exposes is exactly what a
// client can reach.
package graph
