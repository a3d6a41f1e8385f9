// Package merge combines the music records of every plugin in a load order
// into one patch plugin.
//
// Plugins are decoded in load order. The first plugin to define an editor id
// supplies that record's identity and settings; later plugins only extend its
// track list. Each contributing plugin adds its masters and then itself to
// the patch's master list, so the patch loads after everything it draws from.
package merge
