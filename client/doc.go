// Package client implements the synchronous connection to an analytics
// engine.
//
// A Connection is a small state machine (Disconnected, Connected) over a
// Session obtained from a Dialer. The network protocol and the script
// interpreter are behind those two interfaces; LocalEngine is an
// in-process implementation used by tests and examples:
//
//	engine := client.NewLocalEngine()
//	conn := client.New(engine)
//	if err := conn.Connect(ctx, "localhost", 8848, "admin", "123456"); err != nil {
//		return err
//	}
//	defer conn.Close()
//
//	_ = conn.Upload(ctx, "prices", value.NewDoubleVector(1.5, 2.5).Value)
//	v, err := conn.Run(ctx, "size(prices)")
package client
