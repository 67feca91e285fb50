// Package app is the application layer. Service owns the session store and serializes
// every load-modify-save sequence behind a single mutex, so concurrent mutations never
// lose each other's writes.
package app
