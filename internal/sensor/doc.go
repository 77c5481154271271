// Package sensor resolves the data frame a sample index refers to.
//
// Responsibilities: decoding the per-sensor timestamp sequences published
// by the data loader, mapping a slider index to an exact timestamp, and
// looking up the frame payload a sensor recorded at that timestamp.
// Key types: Timestamp, Metadata, Store, Resolver.
//
// Timestamps are int64 nanoseconds end to end. Epoch nanoseconds exceed
// 2^53, so nothing in this package converts them through float64.
package sensor
