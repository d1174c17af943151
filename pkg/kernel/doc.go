// Package kernel computes one output plane from a stack of aligned input
// planes by picking an order statistic per pixel.
//
// Two paths exist. The optimized path covers exact medians of 3, 5, 7 or 9
// planes with fixed sorting networks; it must give the same value as sorting
// and taking the middle element. The generic path gathers every value of a
// pixel, sorts them when trimming is requested, and averages the values left
// after dropping Low from the bottom and High from the top. The path is
// chosen once by Select and stays fixed for the life of a job.
package kernel
