// Package filestore persists the session document as a single JSON file.
//
// Every Load re-reads the file and every Save rewrites it in full through a temporary
// file and an atomic rename, so readers never observe a partially written document.
package filestore
