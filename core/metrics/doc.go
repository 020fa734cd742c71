// Package metrics defines the sink interfaces used to record simulation
// activity. The required capability is event recording; trip, fleet and clock
// recording are optional and probed with type assertions. Sinks are
// instantiated from configuration through the factory registry and several
// sinks combine through NewMultiSink. The factory helpers return a MultiSink
// automatically when more than one sink is configured.
package metrics
