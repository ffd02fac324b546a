package main

import (
	kafkago "github.com/segmentio/kafka-go"

	"github.com/mbenitez/stockroom/internal/events"
	kafkax "github.com/mbenitez/stockroom/internal/kafka"
)

// topicRouter fans fulfillment events out to the producer of the right
// topic, keyed on the x-event-type header.
type topicRouter struct {
	status     *kafkax.Producer
	dispatched *kafkax.Producer
}

func (t *topicRouter) Publish(key, value []byte, headers ...kafkago.Header) {
	for _, h := range headers {
		if h.Key == "x-event-type" && string(h.Value) == events.EventOrderDispatched {
			t.dispatched.Publish(key, value, headers...)
			return
		}
	}
	t.status.Publish(key, value, headers...)
}
