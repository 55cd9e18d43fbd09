package stream

// Search is the strategy used by the materializing extenders to fetch and
// organize chunks of data until a requested count is reached.
type Search[Model any] interface {
	// Prepare readies the next search slice. Returns true when this will be
	// the final search regardless of how much data comes back.
	Prepare(searchCount int) bool
	// Perform executes the search and returns the slice's result stream.
	Perform() (Stream[Model], error)
	// Sort orders the accumulated data in-place into forward iteration order.
	Sort(data []Model)
}

// MaterializeBackwards repeatedly invokes the search, accumulating results
// until maxCount items are collected or the search indicates the final slice.
// Results are sorted and trimmed from the front so the last maxCount items
// remain, then exposed in forward order.
//
// Sparse regions can return nothing per slice: weekends and holidays are
// skipped by issuing further slices. emptySearchLimit bounds how many
// consecutive empty slices are tolerated before the extension is treated as
// exhausted and terminates with the partial result collected.
func MaterializeBackwards[Model any](maxCount, emptySearchLimit int, search Search[Model]) (Stream[Model], error) {
	data, err := materialize(maxCount, emptySearchLimit, search)
	if err != nil {
		return nil, err
	}
	numToRemove := max(0, len(data)-maxCount)
	return FromSlice(data[numToRemove:], nil), nil
}

// MaterializeForwards is the mirror of MaterializeBackwards: accumulated
// results are trimmed from the back so the first maxCount items remain.
func MaterializeForwards[Model any](maxCount, emptySearchLimit int, search Search[Model]) (Stream[Model], error) {
	data, err := materialize(maxCount, emptySearchLimit, search)
	if err != nil {
		return nil, err
	}
	return FromSlice(data[:min(maxCount, len(data))], nil), nil
}

func materialize[Model any](maxCount, emptySearchLimit int, search Search[Model]) ([]Model, error) {
	data := make([]Model, 0, maxCount)
	finalSearch := false
	searchCount := 0
	emptySearches := 0
	for len(data) < maxCount && !finalSearch {
		finalSearch = search.Prepare(searchCount)
		searchCount++
		before := len(data)
		if err := collectInto(&data, search); err != nil {
			return nil, err
		}
		if len(data) == before {
			emptySearches++
			if emptySearches >= emptySearchLimit {
				// exhausted: the region has no more data, keep the partial result
				break
			}
		} else {
			emptySearches = 0
		}
	}
	search.Sort(data)
	return data, nil
}

func collectInto[Model any](data *[]Model, search Search[Model]) error {
	searchData, err := search.Perform()
	if err != nil {
		return err
	}
	defer searchData.Close()
	items, err := Collect(searchData)
	if err != nil {
		return err
	}
	*data = append(*data, items...)
	return nil
}
