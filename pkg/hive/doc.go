// Package hive provides a dotted-path key-value store.
//
// Paths such as "CORS.origin" walk nested maps (and lists, by numeric
// index). All operations are built on a single primitive, [Hive.Ref],
// which resolves a path into a handle that can be read and written
// without resolving the path again:
//
//	h := hive.New(map[string]any{"LANGUAGE": "en"})
//
//	ref := h.Ref("user.profile.name", true) // creates user and profile
//	ref.Set("alice")
//
//	h.Get("user.profile.name", "")  // "alice"
//	h.Has("user.profile.age")        // false, nothing is created
//
// Keys seeded through New are reserved. Remove restores them instead
// of deleting them:
//
//	h.Set("LANGUAGE", "fr")
//	h.Remove("LANGUAGE") // back to "en"
//	h.Remove("user")     // gone
package hive
