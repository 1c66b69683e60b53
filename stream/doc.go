// Package stream implements push-based subscriptions to stream tables.
//
// A Client subscribes through a Dialer, which yields a Feed of delta
// messages. Each subscription runs one delivery goroutine that moves
// messages from its Feed into a bounded Queue; the caller drains the Queue
// with a timed Poll:
//
//	hub := stream.NewHub()
//	c := stream.NewClient(8849, hub)
//	q, err := c.Subscribe(ctx, "localhost", 8848, "trades", stream.DefaultActionName, 0)
//	for {
//		msg, ok := q.Poll(100 * time.Millisecond)
//		if !ok {
//			break
//		}
//		fmt.Println(msg.Offset, msg.Body)
//	}
//
// Hub is an in-process publisher that implements Dialer; a network
// implementation of the same contract is out of scope.
package stream
