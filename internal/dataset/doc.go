// Package dataset reads and writes SQLite calibration databases.
//
// A database holds camera images, the calibration targets extracted from
// them, per-step camera poses and reprojection errors, and raw IMU samples,
// all keyed by (timestamp_ns, sensor_name). Load reads a database into a
// Snapshot: a sensor.Metadata of sorted timestamps per sensor plus
// sensor.Store frame maps, ready for the frame resolver.
//
// Poses are stored camera-from-world, the convention the optimizer works in,
// and are inverted to world-from-camera on load for display.
//
// Matrix BLOBs are protobuf messages holding a row count and column-major
// data, encoded with protowire.
package dataset
