// Package buffer owns one open document: the piece table, the cursor
// list, the vi mode machine, and the undo/redo stacks.
//
// Input arrives as printable characters and special keys; the buffer
// parses multi-key vi commands (dd, gg, f<char>, ...) and dispatches
// motions and commands across all cursors. Edits are applied through
// the multi-cursor rebalancer so concurrent cursors keep pointing at
// the same content, then fanned out to the highlight cache and the
// language-server client.
//
// All methods must be called from the thread that owns the buffer.
package buffer
