// Package dtable provides decision tables: Markdown tables whose rows
// map combinations of column values to outcomes.
//
// The core code is in package 'core', which compiles a table into a
// map from an integer key to an outcome and evaluates bindings
// against it.  Tables can derive column values from messages with
// ECMAScript expressions (see 'interpreters'), and some command-line
// tools are in `cmd`: dtable checks, evaluates, and formats tables,
// and dtserve serves them over HTTP, WebSockets, and MQTT.
package dtable
