package metrics

import (
	"math/big"
	"time"

	"github.com/crnlicp/chronolock/pkg/ledger"
	"github.com/crnlicp/chronolock/pkg/registry"
	"github.com/crnlicp/chronolock/pkg/storage"
)

// Collector periodically samples gauge metrics from the ledger, the
// chronolock registry, and the media store, since those values (total
// supply, chronolock count, in-flight uploads) are cheap to recompute but
// expensive to keep live-updated at every write site.
type Collector struct {
	ledger   *ledger.Ledger
	registry *registry.Registry
	store    storage.Store
	stopCh   chan struct{}
}

// NewCollector builds a Collector over the given services. Any of them may
// be nil, in which case the gauges it would have fed are left unset.
func NewCollector(l *ledger.Ledger, r *registry.Registry, store storage.Store) *Collector {
	return &Collector{ledger: l, registry: r, store: store, stopCh: make(chan struct{})}
}

// Start begins collecting on a fixed interval.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop ends the collection loop.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectLedgerMetrics()
	c.collectRegistryMetrics()
	c.collectMediaMetrics()
}

func (c *Collector) collectLedgerMetrics() {
	if c.ledger == nil {
		return
	}
	meta, err := c.ledger.Metadata()
	if err != nil {
		return
	}
	supply, _ := new(big.Float).SetInt(meta.TotalSupply.BigInt()).Float64()
	burned, _ := new(big.Float).SetInt(meta.TotalBurned.BigInt()).Float64()
	TotalSupply.Set(supply)
	TotalBurned.Set(burned)
}

func (c *Collector) collectRegistryMetrics() {
	if c.registry == nil {
		return
	}
	total, err := c.registry.TotalSupply()
	if err != nil {
		return
	}
	ChronolocksTotal.Set(float64(total))
}

func (c *Collector) collectMediaMetrics() {
	if c.store == nil {
		return
	}
	var active int
	var bytesStored int64
	err := c.store.View(func(tx storage.Tx) error {
		objects, err := tx.ListMediaObjects()
		if err != nil {
			return err
		}
		for _, obj := range objects {
			if !obj.Finalized {
				active++
				continue
			}
			for _, chunk := range obj.Chunks {
				bytesStored += int64(len(chunk))
			}
		}
		return nil
	})
	if err != nil {
		return
	}
	MediaUploadsActive.Set(float64(active))
	MediaBytesStored.Set(float64(bytesStored))
}
