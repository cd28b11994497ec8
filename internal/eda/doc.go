// Package eda renders exploratory charts and summary statistics for the
// encoded credit table.
//
// Outputs, all written to one directory:
//
//	correlation_analysis.png               feature correlation with the target
//	credit_standing_distribution.png       class counts
//	feature_distributions_<feature>.png    30-bin histograms split by class
//	feature_summary.csv                    count, mean, median, std, min, max
//	group_statistics.csv                   mean, median, std per class
package eda
