// Package mcptools exposes a simulation session as MCP tools so an agent can
// set up scenarios and step turns over stdio.
package mcptools
