package internal

// batcher holds back root scheduling while batches are open. Lanes updated
// inside a batch are collected and handed to the flush once the outermost
// batch returns.
type batcher struct {
	depth int
	lanes Lanes
}

// hold records lane when a batch is open and reports whether it did.
func (b *batcher) hold(lane Lane) bool {
	if b.depth == 0 {
		return false
	}
	b.lanes |= lane
	return true
}

func (b *batcher) run(fn func(), flush func(Lanes)) {
	b.depth++
	defer func() {
		b.depth--
		if b.depth > 0 {
			return
		}
		lanes := b.lanes
		b.lanes = NoLanes
		if lanes != NoLanes && flush != nil {
			flush(lanes)
		}
	}()

	fn()
}

// Batch runs fn and schedules the root once, after fn and every batch
// nested in it return.
func (r *Root) Batch(fn func()) {
	r.batcher.run(fn, func(lanes Lanes) {
		r.logger.Debug("batch flushed", "lanes", lanes.String())
		r.ensureRootIsScheduled()
	})
}
