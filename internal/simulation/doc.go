// Package simulation implements the courtroom simulation pipeline: the
// streaming wire protocol, the server-side run generator, and the client-side
// aggregator that folds streamed results into per-strategy run collections.
//
// The wire format is a chunked HTTP response body of newline-delimited
// records, each of the form:
//
//	data: {"type":"run_complete","strategyId":"strategy-1","run":{...}}
//
// A stream carries zero or more run_complete and strategy_complete records
// and is terminated by a single complete record (or an error record). Lines
// that are not data: records, and data: records that fail to parse, are
// skipped without aborting the stream.
//
// Consumption side:
//
//	FrameDecoder  bytes → complete data: payloads (chunk-boundary safe)
//	ParseEvent    payload → *Event (tagged union on "type")
//	Aggregator    events → run buckets + progress + lifecycle state
//	Client        HTTP POST + stream consumption, feeding an Aggregator
//
// Production side:
//
//	Runner        strategies → upstream completions → emitted events
package simulation
