// Package harness is the deterministic, single-threaded test driver that
// exercises a tasklet.Processor in isolation, against synthetic inbox and
// outbox values, including snapshot save/restore round-trips. It never
// spawns a goroutine: the whole run is one sequential call chain, the same
// single-worker determinism a production tasklet gets from cooperative
// scheduling, just without the scheduler.
package harness

import "github.com/flowcore/tasklet"

// Supplier yields Processor instances. The harness treats the supplier, not
// any one instance, as the unit of reusability: a snapshot restore needs a
// fresh instance, so Supplier is called again whenever one is needed. A
// supplier that has nothing further to give returns nil.
type Supplier func() tasklet.Processor

// Of adapts a single Processor value into a Supplier that yields it once,
// then nil. Because restoring a snapshot always asks the supplier for a
// second instance, Run with doSnapshots over a single-shot supplier of a
// Snapshottable processor fails with a HarnessAssertionFailure at the first
// restore — use a real Supplier (or Repeatable) to test snapshot round-trips.
func Of(p tasklet.Processor) Supplier {
	used := false
	return func() tasklet.Processor {
		if used {
			return nil
		}
		used = true
		return p
	}
}

// Repeatable adapts a constructor function into a Supplier that can be
// called any number of times, each time yielding a fresh Processor.
func Repeatable(newProcessor func() tasklet.Processor) Supplier {
	return Supplier(newProcessor)
}

// Context is the synthetic, single-address execution context a MetaSupplier
// is initialized with. It stands in for the cluster address assignment a
// real job coordinator would perform (out of scope here).
type Context struct {
	Address string
}

// LocalContext is the single synthetic address the harness always uses.
func LocalContext() Context { return Context{Address: "local"} }

// BatchSupplier yields count Processor instances for one address, mirroring
// how a distributed job asks one meta-supplier for the processors it must
// run locally.
type BatchSupplier func(count int) []tasklet.Processor

// MetaSupplier is initialized with a Context and returns the BatchSupplier
// for that address.
type MetaSupplier func(ctx Context) BatchSupplier

// FromMetaSupplier derives a repeatable Supplier from a MetaSupplier: each
// call asks for a fresh single-processor batch at LocalContext.
func FromMetaSupplier(ms MetaSupplier) Supplier {
	return func() tasklet.Processor {
		procs := ms(LocalContext())(1)
		if len(procs) == 0 {
			return nil
		}
		return procs[0]
	}
}

// FromBatchSupplier derives a repeatable Supplier from a bare BatchSupplier,
// skipping meta-supplier initialization.
func FromBatchSupplier(bs BatchSupplier) Supplier {
	return func() tasklet.Processor {
		procs := bs(1)
		if len(procs) == 0 {
			return nil
		}
		return procs[0]
	}
}
