// Package median combines frames from several aligned clips into one output
// clip by taking a per-pixel median or trimmed mean.
//
// Three modes are provided. Median takes the exact median of an odd number
// of clips. MedianBlend drops the Low smallest and High largest values of
// every pixel and averages the rest. TemporalMedian takes the median over a
// window of 2*Radius+1 consecutive frames of a single clip.
//
// When Sync is positive each secondary clip is realigned to the first one
// for every output frame: the frame within Sync frames of the current
// position that is most similar to the reference frame is used instead of
// the frame at the same index.
//
// All parameters are validated once by New. Filter.Process computes one
// output frame and is safe to call concurrently for different frames.
package median
