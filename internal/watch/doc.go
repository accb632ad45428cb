// Package watch re-triggers discovery when suite files change.
//
// A Watcher observes suite files and directories with fsnotify. Directories
// are watched recursively, and directories created later are added as they
// appear. Events are debounced: rapid successive writes (editors commonly
// write, rename and chmod in quick succession) are coalesced into a single
// Change carrying the final operation of every affected file.
package watch
