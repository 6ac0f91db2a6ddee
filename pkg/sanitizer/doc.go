// Package sanitizer cleans untrusted text before it is embedded in HTML,
// using bluemonday policies.
package sanitizer
