// Package game describes the supported Bethesda titles and resolves where a
// title keeps its plugins and its load order.
//
// A LoadOrder combines a title's implicit master files with the enabled
// entries of its plugins.txt and turns them into paths under the data
// directory, which is what the merge orchestrator consumes.
package game
