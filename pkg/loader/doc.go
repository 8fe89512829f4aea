// Package loader retrieves the full dataset from the data source under three
// selectable strategies and hands it over as one ordered sequence.
//
// Strategies:
//
//   - single: one GET /data/all request, no intermediate progress.
//   - sequential: GET /data/count, then ceil(N/B) page requests one at a
//     time at offsets 0, B, 2B, ...; progress after every batch.
//   - parallel: the same batch plan, issued in groups of at most
//     ParallelLimit concurrent requests; each group is awaited as a whole
//     and its results are sorted by batch index before concatenation,
//     because completion order under concurrency does not match request
//     order; progress after every group.
//
// Example usage:
//
//	l := loader.New(client, func(p loader.Progress) {
//		fmt.Printf("%d%%\n", p.Percent)
//	})
//	result, err := l.Load(ctx, loader.Config{
//		Strategy:      loader.StrategyParallel,
//		BatchSize:     10000,
//		ParallelLimit: 5,
//	})
//
// Any single request failure aborts the entire load and no partial result is
// returned; the caller surfaces the failure and may simply call Load again.
package loader
