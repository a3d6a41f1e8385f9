// Package main hosts the musicmerge CLI.
//
// The Cobra command tree resolves configuration and the game load order,
// runs the music merge, and renders plugins, load orders and past runs as
// tables. The merge logic itself lives in internal/merge and internal/plugin.
package main
