package dukascopy

import (
	"context"
	"io"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/LimeMojito/trading-data-stream/pkg/dukascopy/cache"
	"github.com/LimeMojito/trading-data-stream/pkg/logger"
)

// Primer eagerly pulls a symbol and time range through a cache chain so later
// searches are served locally. Loads run on a worker pool sized to the
// available CPU cores.
type Primer struct {
	cache   cache.TickCache
	pathGen *PathGenerator
	log     logger.Interface
	workers chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	pending *sync.WaitGroup
	loadID  string
	entropy *rand.Rand
}

// NewPrimer creates a primer over the cache using the available CPU cores.
func NewPrimer(tickCache cache.TickCache, pathGen *PathGenerator, log logger.Interface) *Primer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Primer{
		cache:   tickCache,
		pathGen: pathGen,
		log:     log,
		workers: make(chan struct{}, runtime.NumCPU()),
		ctx:     ctx,
		cancel:  cancel,
		pending: &sync.WaitGroup{},
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewLoad clears any pending load tracking and starts a new tagged load.
func (p *Primer) NewLoad() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = &sync.WaitGroup{}
	p.loadID = ulid.MustNew(ulid.Timestamp(time.Now()), p.entropy).String()
	return p.loadID
}

// Load enqueues one prefetch task per generated path for the symbol and time
// range. Each task streams the path to completion so every tier materializes
// the payload; failures are logged and do not fail the load.
func (p *Primer) Load(symbol string, start, end time.Time) {
	p.mu.Lock()
	pending := p.pending
	loadID := p.loadID
	p.mu.Unlock()

	paths := p.pathGen.GeneratePaths(symbol, start, end)
	for _, path := range paths {
		pending.Add(1)
		go func(path string) {
			defer pending.Done()
			select {
			case p.workers <- struct{}{}:
				defer func() { <-p.workers }()
			case <-p.ctx.Done():
				return
			}
			p.prime(path, loadID)
		}(path)
	}
}

// WaitForCompletion blocks until all enqueued tasks of the current load finish.
func (p *Primer) WaitForCompletion() {
	p.log.Info("waiting for completion", logger.NewField("loadId", p.loadID))
	p.mu.Lock()
	pending := p.pending
	p.mu.Unlock()
	pending.Wait()
}

// Shutdown interrupts in-flight workers.
func (p *Primer) Shutdown() {
	p.cancel()
}

func (p *Primer) prime(path, loadID string) {
	source, err := p.cache.Stream(p.ctx, path)
	if err != nil {
		p.log.Error(err, logger.NewField("path", path), logger.NewField("loadId", loadID))
		return
	}
	defer source.Close()
	// the object store complains loudly if we don't consume the data
	size, err := io.Copy(io.Discard, source)
	if err != nil {
		p.log.Error(err, logger.NewField("path", path), logger.NewField("loadId", loadID))
		return
	}
	p.log.Info("loaded", logger.NewField("path", path), logger.NewField("bytes", size))
}
