// Package config reads application config files into an ordered list of
// directives.
//
// Both grammars produce the same shape. INI:
//
//	DEBUG = 3
//	CACHE = "redis=localhost:6379:0"
//
//	[routes]
//	GET home / = Home.index
//	GET|POST /login = Auth.login
//
// and the YAML equivalent:
//
//	DEBUG: 3
//	routes:
//	  GET home /: Home.index
//
// Top-level keys carry an empty Section. The caller decides what a
// section means; values are coerced with [Coerce].
package config
