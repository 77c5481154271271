// Package frameview turns a frame index into the patch updates of every
// panel that shows it.
//
// A camera yields up to four panels: the target points on the target plane,
// the detected pixels in the image, the camera pose gizmo for the selected
// calibration step and the time cursor. An IMU yields its time cursor.
// Each panel is resolved independently: a failure in one never prevents the
// others from updating.
//
// Failures are sorted by kind. Missing input and frames not yet available
// are skipped silently. Malformed metadata is logged and reported as a
// warning, as is an index outside the recorded range. An invalid axis id is
// a caller bug and aborts the whole update.
package frameview
