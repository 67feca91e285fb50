// Package domain defines the core domain types and interfaces.
//
// Session and Document are the persisted shapes; SessionStore is the contract the
// application layer uses to reach durable state.
package domain
