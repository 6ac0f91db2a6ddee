// Package event provides a synchronous, named event bus.
//
// Listeners run in registration order on the caller's goroutine. A
// listener may return ErrStop to end dispatch early:
//
//	bus := event.NewBus[*Request]()
//	off, _ := bus.On("before", func(r *Request) (any, error) {
//	    if r.Blocked {
//	        return "blocked", event.ErrStop
//	    }
//	    return nil, nil
//	})
//	defer off()
//
//	out, err := bus.Dispatch("before", req)
//	if out.Stopped {
//	    // a listener took over
//	}
//
// One registers a listener that is removed after its first dispatch.
package event
