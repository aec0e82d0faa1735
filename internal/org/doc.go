// Package org holds the coordination domain model: organisations and
// the groups, schedules, events, tags, and capabilities inside them.
//
// Everything here is scoped by organisation. Users belong to one
// organisation; groups, tags, and capabilities carry its ID; schedules
// and events hang off groups. The repositories expose the typed
// traversals between those entities that the read side of the API is
// built from, and membership checks that the authorization layer uses
// to decide what a caller may see.
package org
