/*
Package wiretest provides the core primitives of an asynchronous,
transport-agnostic test-execution engine: correlation of requests with
their eventual replies, and path-expression evaluation over runtime
state.

# Overview

A test run exchanges messages with systems under test over arbitrary
transports. Replies may arrive out of order, on another goroutine, or
long after the sender moved on. The correlation subpackage links each
request to its reply via a content-derived key; the path subpackage
resolves dotted, indexed expressions like "order.items[2].price"
against the run's variable table or any structured value, backing both
variable substitution and content-based reply selection.

# Basic Usage

Bind a key at send time, store the reply when the transport completes,
and await it from wherever the test continues:

	store := correlation.NewMemoryStore()
	mgr := correlation.NewManager(store)

	request := message.New(`{"command": "list"}`)
	key, err := mgr.Key(request)
	if err != nil {
	    log.Fatal(err)
	}
	mgr.SaveKey("ftp-client", key)

	// ... transport I/O completes, possibly elsewhere ...
	mgr.Store(ctx, key, message.New(`{"reply": "250 OK"}`))

	key, _ = mgr.ResolveKey("ftp-client")
	reply, err := mgr.Await(ctx, key, nil)

Evaluate runtime state through a Context:

	run := wiretest.NewContext("run-1")
	run.SetVariable("order", order)
	price, err := run.Evaluate("order.items[2].price")

# Reply Selection

When several replies are buffered in flight, a selector picks the
right one:

	sel, _ := selector.New(selector.KindJSONPath, "foobar",
	    selector.WithExpression("$.foo.text"))
	reply, err := mgr.Await(ctx, key, sel)

Transport clients, the test-action DSL, and suite orchestration are
external collaborators; they consume these packages through the narrow
surfaces above.
*/
package wiretest
