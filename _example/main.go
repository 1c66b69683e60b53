package main

import (
	"fmt"
	"log"
	"log/slog"

	"github.com/hupe1980/ddbgo"
	"github.com/hupe1980/ddbgo/model"
	"github.com/hupe1980/ddbgo/value"
)

func main() {
	b := ddbgo.New(ddbgo.WithLogLevel(slog.LevelInfo))
	defer b.Close()

	fmt.Println("--- Values ---")

	vec := b.VectorNew(int(model.TypeInt), 0, 8)
	b.VectorAppendInt(vec, []int32{3, 1, 4, 1, 5, 9, 2, 6})
	fmt.Println("vector:", b.ValueScript(vec), "len:", b.VectorLen(vec))

	sub := b.VectorSubVector(vec, 2, 3)
	fmt.Println("sub:", b.ValueScript(sub))
	b.Release(sub)

	syms := b.VectorNew(int(model.TypeSymbol), 0, 3)
	b.VectorAppendString(syms, []string{"AAPL", "MSFT", "IBM"})
	prices := b.VectorNew(int(model.TypeDouble), 0, 3)
	b.VectorAppendDouble(prices, []float64{190.5, 410.25, 168})

	tbl := b.TableNew([]string{"sym", "price"}, []ddbgo.Handle{syms, prices})
	if tbl == ddbgo.NilHandle {
		log.Fatal(b.LastError())
	}
	b.TableSetName(tbl, "quotes")
	for i := 0; i < b.TableRows(tbl); i++ {
		fmt.Println("row:", b.TableStringAt(tbl, i))
	}

	data := b.TableToArrow(tbl)
	back := b.TableFromArrow(data)
	fmt.Printf("arrow: %d bytes, equal after round trip: %v\n\n", len(data), b.ValueEqual(tbl, back))
	b.Release(back)

	fmt.Println("--- Connection ---")

	conn := b.ConnectionNew()
	if !b.ConnectionConnect(conn, "localhost", 8848, "admin", "123456") {
		log.Fatal(b.LastError())
	}
	if !b.ConnectionUpload(conn, "quotes", tbl) {
		log.Fatal(b.LastError())
	}
	res := b.ConnectionRun(conn, "size(quotes)")
	if res == ddbgo.NilHandle {
		log.Fatal(b.LastError())
	}
	fmt.Println("size(quotes):", b.ValueGetInt(res))
	b.Release(res)

	w := b.TableWriterNew(conn, "quotes", 2)
	for _, sym := range []string{"NVDA", "AMD"} {
		row := b.VectorNew(int(model.TypeAny), 0, 2)
		name := b.ValueNewSymbol(sym)
		price := b.ValueNewDecimal(int(model.TypeDecimal64), 2, "120.505")
		b.VectorAppend(row, name)
		b.VectorAppend(row, price)
		if !b.TableWriterAppendRow(w, row) {
			log.Fatal(b.LastError())
		}
		b.Release(price)
		b.Release(name)
		b.Release(row)
	}
	fmt.Println("inserted by writer:", b.TableWriterInserted(w))
	b.Release(w)

	res = b.ConnectionRunWithOption(conn, "size(quotes)", 8, 16, 0)
	fmt.Println("size(quotes) at priority 8:", b.ValueGetInt(res))
	b.Release(res)

	if b.ConnectionRun(conn, "missing") == ddbgo.NilHandle {
		fmt.Println("run failed as expected:", b.LastErrorMessage())
		b.ClearError()
	}
	b.ConnectionClose(conn)
	b.Release(conn)
	fmt.Println()

	fmt.Println("--- Streaming ---")

	hub := b.Hub()
	if err := hub.CreateTable("trades", []string{"id", "price"}, []model.Type{model.TypeInt, model.TypeDouble}); err != nil {
		log.Fatal(err)
	}

	pc := b.PollingClientNew(8849)
	q := b.PollingClientSubscribe(pc, "localhost", 8848, "trades", b.DefaultActionName(), 0)
	if q == ddbgo.NilHandle {
		log.Fatal(b.LastError())
	}

	for i := 0; i < 3; i++ {
		if _, err := hub.Insert("trades",
			value.NewIntVector(int32(i)).Value,
			value.NewDoubleVector(100+float64(i)/4).Value,
		); err != nil {
			log.Fatal(err)
		}
	}

	var msg ddbgo.Handle
	for i := 0; i < 3; i++ {
		if !b.MessageQueuePollMessage(q, &msg, 1000) {
			log.Fatal("no message within 1s")
		}
		body := b.MessageBody(msg)
		fmt.Printf("offset %d on %s: %s\n", b.MessageOffset(msg), b.MessageTopic(msg), b.ValueScript(body))
		b.Release(body)
		b.Release(msg)
	}

	b.PollingClientUnsubscribe(pc, "localhost", 8848, "trades", b.DefaultActionName())
	b.Release(q)
	b.Release(pc)

	b.Release(tbl)
	b.Release(syms)
	b.Release(prices)
	b.Release(vec)

	fmt.Printf("\nlive handles: %d\n", b.HandleStats().Live)
}
