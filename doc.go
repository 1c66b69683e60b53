// Package ddbgo exposes a columnar analytics value model and a streaming
// subscription client through a flat, handle-based calling convention.
//
// Every object crosses the boundary as an opaque Handle owned by a Bridge.
// Entry points are named Component + Operation and take handles and
// primitives only:
//
//	b := ddbgo.New()
//	defer b.Close()
//
//	v := b.VectorNew(int(model.TypeInt), 0, 8)
//	b.VectorAppendInt(v, []int32{1, 2, 3})
//	sub := b.VectorSubVector(v, 1, 2) // view, aliases v
//	fmt.Println(b.ValueGetString(sub)) // [2,3]
//	b.Release(sub)
//	b.Release(v)
//
// # Ownership
//
// Each handle-returning call hands out one unit of ownership that must be
// given back with Release. Retain issues a second handle to the same object.
// Views (sub-vectors, table and matrix columns) keep their backing storage
// alive on their own, so the handle they were taken from can be released
// first.
//
// # Errors
//
// No entry point panics or returns an error. Failures are reported as
// false, zero or NilHandle, and the cause is available from LastError:
//
//	res := b.ConnectionRun(conn, "undefinedVar")
//	if res == ddbgo.NilHandle {
//	    var re *client.RemoteError
//	    if errors.As(b.LastError(), &re) { ... }
//	}
//
// Panics raised below the boundary, including inside a remote session, are
// recovered and reported as ErrInternal or *client.RemoteError.
//
// # Connections and streaming
//
// Connections run scripts against a client.Session obtained from the
// configured client.Dialer. Polling clients subscribe to stream tables
// through a stream.Dialer and drain them with MessageQueuePoll. Without
// explicit dialers a Bridge uses an in-process client.LocalEngine and
// stream.Hub, reachable through Engine and Hub.
//
// # Key Features
//
//   - Generation-tagged handles: stale handles never resolve
//   - Vector views, batch removal and table column drops via roaring bitmaps
//   - Bounded per-subscription queues with reconnect and offset resume
//   - Offset checkpoints on local disk, MinIO, S3 or DynamoDB
//   - Arrow IPC export and import of tables
package ddbgo
