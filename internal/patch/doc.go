// Package patch describes incremental figure updates.
//
// An Op lists (path, value) assignments for only the fields that changed
// (trace coordinates, marker styling, layout overlays) so a renderer can
// update a live plot instead of redrawing it. Ops encode to the Dash
// Patch wire format.
package patch
